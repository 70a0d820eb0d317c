package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/bits"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Hash is a perceptual hash of size*size bits packed into 64-bit words.
// The zero value is invalid and reports maximal distance to any other hash.
type Hash struct {
	words []uint64
	size  int
}

// ComputeHash computes a difference hash for an image. The hash has
// hashSize*hashSize bits: the image is scaled to (hashSize+1) x hashSize
// grayscale pixels and each bit records whether a pixel is brighter than its
// right neighbor. Larger sizes are more precise but slower to compute.
func ComputeHash(imageData []byte, hashSize int) (Hash, error) {
	if hashSize < 2 {
		return Hash{}, fmt.Errorf("hash size must be at least 2, got %d", hashSize)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return Hash{}, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := resizeImage(img, hashSize+1, hashSize)
	gray := toGrayscale(resized)

	words := make([]uint64, (hashSize*hashSize+63)/64)
	bit := 0
	for y := 0; y < hashSize; y++ {
		for x := 0; x < hashSize; x++ {
			if gray[x][y] > gray[x+1][y] {
				words[bit/64] |= 1 << (63 - bit%64)
			}
			bit++
		}
	}

	return Hash{words: words, size: hashSize}, nil
}

// Size returns the hash size the hash was computed with.
func (h Hash) Size() int {
	return h.size
}

// BitLen returns the number of bits in the hash.
func (h Hash) BitLen() int {
	return h.size * h.size
}

// Valid reports whether the hash has been computed.
func (h Hash) Valid() bool {
	return h.size > 0
}

// Hex returns the hash as a hex string (16 characters per 64-bit word).
func (h Hash) Hex() string {
	var sb strings.Builder
	for _, w := range h.words {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}

// HammingDistance computes the number of differing bits between two hashes.
// Hashes of different sizes are never similar; the larger bit length is
// returned as the maximal distance.
func HammingDistance(a, b Hash) int {
	if a.size != b.size {
		return max(a.BitLen(), b.BitLen())
	}
	distance := 0
	for i := range a.words {
		distance += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return distance
}

// Similar returns true if two hashes are within the given Hamming threshold.
func Similar(a, b Hash, threshold int) bool {
	return HammingDistance(a, b) <= threshold
}

// resizeImage scales an image to the specified dimensions.
func resizeImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// toGrayscale converts an image to a 2D array of grayscale values (0-255).
func toGrayscale(img *image.RGBA) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, width)
	for x := 0; x < width; x++ {
		gray[x] = make([]float64, height)
		for y := 0; y < height; y++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray[x][y] = luma
		}
	}

	return gray
}
