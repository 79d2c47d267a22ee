package services

import (
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// ExtractMinPrices returns the lowest price seen per wanted item ID.
// An item is priced from the minimum unit price of its listings; buyout prices
// only count for items where no listing carries a unit price. Items without
// any priced listing get no entry.
func ExtractMinPrices(listings []models.AuctionListing, itemIDs []int) map[int]int64 {
	wanted := make(map[int]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}

	unitPrices := make(map[int]int64, len(itemIDs))
	buyouts := make(map[int]int64)
	for _, listing := range listings {
		if !wanted[listing.ItemID] {
			continue
		}
		if listing.UnitPrice != nil {
			keepMin(unitPrices, listing.ItemID, *listing.UnitPrice)
		} else if listing.Buyout != nil {
			keepMin(buyouts, listing.ItemID, *listing.Buyout)
		}
	}

	for id, price := range buyouts {
		if _, ok := unitPrices[id]; !ok {
			unitPrices[id] = price
		}
	}
	return unitPrices
}

func keepMin(prices map[int]int64, id int, price int64) {
	if price < 0 {
		return
	}
	if current, seen := prices[id]; !seen || price < current {
		prices[id] = price
	}
}
