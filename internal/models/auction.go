package models

// AuctionListing is one commodity listing from an auction snapshot.
// Prices are copper; either price may be absent.
type AuctionListing struct {
	ItemID    int
	UnitPrice *int64
	Buyout    *int64
}
