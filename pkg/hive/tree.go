package hive

import (
	"fmt"

	"github.com/duskforge/reghive/pkg/types"
)

// pathSeparator matches the backslash Windows registry tools use when
// printing a fully-qualified key path (e.g. HKLM\SYSTEM\CurrentControlSet).
const pathSeparator = `\`

// TreeNode is one flattened entry of a registry tree walk, sized for TUI
// display rather than for holding the full KeyDetail/ValueMeta payload of
// every node in memory at once.
type TreeNode struct {
	NodeID      NodeID
	Name        string
	Path        string
	Parent      string
	Depth       int
	HasChildren bool
}

// frame is one pending unit of work in the iterative walk below: a node to
// visit plus the path context it inherited from its parent.
type frame struct {
	id         NodeID
	parentPath string
	parent     string
	depth      int
}

// BuildTreeStructure flattens the subtree rooted at r.Root() into a single
// slice of TreeNode, in pre-order. Unlike a recursive walk, this never grows
// the Go call stack with tree depth, so a pathologically deep or cyclic hive
// degrades into a depth-limit error instead of a stack overflow.
func BuildTreeStructure(r Reader) ([]TreeNode, error) {
	root, err := r.Root()
	if err != nil {
		return nil, err
	}

	maxDepth := types.WindowsMaxTreeDepthDeep
	nodes := make([]TreeNode, 0, 256)
	stack := []frame{{id: root, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxDepth {
			return nil, fmt.Errorf("hive: tree depth exceeds %d at node %d, likely a cycle", maxDepth, f.id)
		}

		meta, err := r.StatKey(f.id)
		if err != nil {
			return nil, err
		}

		path := meta.Name
		if f.parentPath != "" {
			path = f.parentPath + pathSeparator + meta.Name
		}

		nodes = append(nodes, TreeNode{
			NodeID:      f.id,
			Name:        meta.Name,
			Path:        path,
			Parent:      f.parent,
			Depth:       f.depth,
			HasChildren: meta.SubkeyN > 0,
		})

		if meta.SubkeyN == 0 {
			continue
		}
		children, err := r.Subkeys(f.id)
		if err != nil {
			// A corrupt subkey list under this node shouldn't abort the
			// walk of everything else already discovered.
			continue
		}
		// Push in reverse so children still pop in their original order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], parentPath: path, parent: path, depth: f.depth + 1})
		}
	}

	return nodes, nil
}
