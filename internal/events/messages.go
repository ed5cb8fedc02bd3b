package events

// Event types.
const (
	TypePackOpened      = "pack:opened"
	TypeRarityCompleted = "collection:completed"
	TypeCatalogReloaded = "catalog:reloaded"
)

// PackOpenedEvent is the payload for pack:opened events.
type PackOpenedEvent struct {
	SetCode  string `json:"setCode"`
	PackID   string `json:"packId"`   // Empty when the pack was not recorded
	Cards    int    `json:"cards"`    // Cards in the pack
	NewCards int    `json:"newCards"` // Cards pulled for the first time
}

// RarityCompletedEvent is the payload for collection:completed events.
// Sent once per set rarity when its last card is pulled.
type RarityCompletedEvent struct {
	SetCode   string `json:"setCode"`
	SetName   string `json:"setName"`
	Category  string `json:"category"`
	CardCount int    `json:"cardCount"`
}

// CatalogReloadedEvent is the payload for catalog:reloaded events.
type CatalogReloadedEvent struct {
	Sets  int `json:"sets"`
	Cards int `json:"cards"`
}
