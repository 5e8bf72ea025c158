package tree

import (
	"fmt"
	"strings"
)

/*
Node is a node of a fitted conditional inference tree. Each node is
exactly one of:
  - an internal node, recording the column it splits on, the
    permutation-test p-value that justified the split, the threshold that
    partitions samples, the impurity decrease the split achieved and the
    two owned children, or
  - a leaf, recording the class-probability estimate for the samples that
    reach it.

A node exclusively owns its children: the structure is a strict binary
tree with no sharing and no back references, alive for as long as the
owning Classifier.
*/
type Node struct {
	// The column of the feature matrix this node splits on
	Col int
	// The p-value from the permutation test that selected the column
	PValue float64
	// The split point: samples with value <= Threshold go left,
	// the rest go right
	Threshold float64
	// The decrease in gini impurity achieved by the split
	Impurity float64
	// The subtrees for samples on either side of the threshold
	Left  *Node
	Right *Node
	// The class-probability estimate. Non-nil exactly on leaves.
	Value []float64
}

// Leaf reports whether n is a terminal node.
func (n *Node) Leaf() bool {
	return n.Value != nil
}

func (n *Node) String() string {
	return n.subtreeString(" ", false)
}

func (n *Node) subtreeString(indent string, right bool) string {
	if n.Leaf() {
		return fmt.Sprintf("label: %v\n", n.Value)
	}
	op := "<="
	if right {
		op = ">"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "X[:,%d] %s %v\n", n.Col, op, n.Threshold)
	fmt.Fprintf(&b, "%sL: %s", indent, n.Left.subtreeString(indent+indent, false))
	fmt.Fprintf(&b, "%sR: %s", indent, n.Right.subtreeString(indent+indent, true))
	return b.String()
}
