package catalog

// Family identifies which composition rules apply when a pack is opened for a set.
type Family int

const (
	// FamilyUnknown is the zero value for sets that have not been tagged yet.
	FamilyUnknown Family = iota
	FamilyCrossSetPromo
	FamilyVirtualPromo
	FamilyTribbleStarter
	FamilyPromoOnly
	FamilyStarterPure
	FamilyStarterMixed
	FamilyVirtual
	FamilyStandard
)

// String returns a stable name for the family.
func (f Family) String() string {
	switch f {
	case FamilyCrossSetPromo:
		return "cross-set-promo"
	case FamilyVirtualPromo:
		return "virtual-promo"
	case FamilyTribbleStarter:
		return "tribble-starter"
	case FamilyPromoOnly:
		return "promo-only"
	case FamilyStarterPure:
		return "starter-pure"
	case FamilyStarterMixed:
		return "starter-mixed"
	case FamilyVirtual:
		return "virtual"
	case FamilyStandard:
		return "standard"
	default:
		return "unknown"
	}
}
