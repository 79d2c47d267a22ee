package services

import (
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// ComputeCompositePrice prices the recipe bottom-up into a fresh tree.
// Leaves take their extracted market price (0 when missing). Composites are
// always the sum of child price times child quantity, never their own market price.
func ComputeCompositePrice(root *models.BillOfMaterialsNode, prices map[int]int64) *models.PricedNode {
	priced := priceNode(root, prices)
	priced.AmountNeeded = 1
	return &priced
}

func priceNode(node *models.BillOfMaterialsNode, prices map[int]int64) models.PricedNode {
	priced := models.PricedNode{
		ItemID:       node.ItemID,
		Name:         node.Name,
		AmountNeeded: node.Quantity(),
	}

	if node.IsLeaf() {
		priced.Price = prices[node.ItemID]
		return priced
	}

	priced.Parts = make([]models.PricedNode, 0, len(node.Parts))
	for i := range node.Parts {
		child := priceNode(&node.Parts[i], prices)
		priced.Price += child.Price * child.AmountNeeded
		priced.Parts = append(priced.Parts, child)
	}
	return priced
}

// MissingPrices lists leaf item IDs that had no market price in this pass
func MissingPrices(root *models.BillOfMaterialsNode, prices map[int]int64) []int {
	var missing []int
	var walk func(node *models.BillOfMaterialsNode)
	walk = func(node *models.BillOfMaterialsNode) {
		if node.IsLeaf() {
			if _, ok := prices[node.ItemID]; !ok {
				missing = append(missing, node.ItemID)
			}
			return
		}
		for i := range node.Parts {
			walk(&node.Parts[i])
		}
	}
	walk(root)
	return missing
}
