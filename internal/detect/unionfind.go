package detect

// unionFind is a disjoint set over integer indices into an image arena.
// Grouping through explicit merges keeps tie-break and ordering semantics
// deterministic and avoids recursion over pairwise links.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{
		parent: parent,
		rank:   make([]int, n),
	}
}

// find returns the root of x, compressing the path by halving.
func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets containing x and y using union by rank.
func (u *unionFind) union(x, y int) {
	px, py := u.find(x), u.find(y)
	if px == py {
		return
	}
	if u.rank[px] < u.rank[py] {
		px, py = py, px
	}
	u.parent[py] = px
	if u.rank[px] == u.rank[py] {
		u.rank[px]++
	}
}

// groups returns all components with more than one member. Groups are ordered
// by their first member's index and members stay in index order, so group ids
// follow the input scan order.
func (u *unionFind) groups() [][]int {
	members := make(map[int][]int)
	var order []int
	for i := range u.parent {
		root := u.find(i)
		if len(members[root]) == 0 {
			order = append(order, root)
		}
		members[root] = append(members[root], i)
	}

	var result [][]int
	for _, root := range order {
		if len(members[root]) > 1 {
			result = append(result, members[root])
		}
	}
	return result
}
