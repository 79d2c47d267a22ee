package models

import (
	"fmt"
)

// BillOfMaterialsNode describes how a crafted item decomposes into parts.
// The topology is read-only after loading; prices live in PricedNode.
type BillOfMaterialsNode struct {
	ItemID       int                   `json:"id" yaml:"id"`
	Name         string                `json:"name" yaml:"name"`
	AmountNeeded int                   `json:"amount_needed,omitempty" yaml:"amount_needed,omitempty"`
	Parts        []BillOfMaterialsNode `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// IsLeaf returns true for raw materials (nodes without parts)
func (n *BillOfMaterialsNode) IsLeaf() bool {
	return len(n.Parts) == 0
}

// Quantity returns the amount of this node its parent needs; absent means 1
func (n *BillOfMaterialsNode) Quantity() int64 {
	if n.AmountNeeded <= 0 {
		return 1
	}
	return int64(n.AmountNeeded)
}

// ItemIDs returns the distinct item IDs of every node in the graph, composites
// included, in depth-first first-visit order
func (n *BillOfMaterialsNode) ItemIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	var walk func(node *BillOfMaterialsNode)
	walk = func(node *BillOfMaterialsNode) {
		if !seen[node.ItemID] {
			seen[node.ItemID] = true
			ids = append(ids, node.ItemID)
		}
		for i := range node.Parts {
			walk(&node.Parts[i])
		}
	}
	walk(n)
	return ids
}

// Validate checks IDs and quantities and rejects an item that appears among its own ancestors
func (n *BillOfMaterialsNode) Validate() error {
	return n.validate(map[int]bool{}, true)
}

func (n *BillOfMaterialsNode) validate(ancestors map[int]bool, root bool) error {
	if n.ItemID <= 0 {
		return fmt.Errorf("item %q: id must be positive", n.Name)
	}
	if !root && n.AmountNeeded < 0 {
		return fmt.Errorf("item %d: amount_needed must not be negative", n.ItemID)
	}
	if ancestors[n.ItemID] {
		return fmt.Errorf("item %d: appears among its own parts", n.ItemID)
	}
	ancestors[n.ItemID] = true
	defer delete(ancestors, n.ItemID)

	for i := range n.Parts {
		if err := n.Parts[i].validate(ancestors, false); err != nil {
			return err
		}
	}
	return nil
}

// PricedNode is one computation pass's price overlay over a BillOfMaterialsNode
type PricedNode struct {
	ItemID       int          `json:"id"`
	Name         string       `json:"name"`
	AmountNeeded int64        `json:"amount_needed"`
	Price        int64        `json:"price"`
	Parts        []PricedNode `json:"parts,omitempty"`
}

// Items flattens the priced tree into snapshot items, root first, depth-first
func (p *PricedNode) Items() []PriceItem {
	var items []PriceItem
	var walk func(node *PricedNode)
	walk = func(node *PricedNode) {
		items = append(items, PriceItem{ID: node.ItemID, Name: node.Name, Price: node.Price})
		for i := range node.Parts {
			walk(&node.Parts[i])
		}
	}
	walk(p)
	return items
}
