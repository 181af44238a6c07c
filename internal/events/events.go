// internal/events/events.go
package events

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of a ledger event.
type Kind string

const (
	KindAssetMinted           Kind = "asset.minted"
	KindLicenseOfferCreated   Kind = "license.offer_created"
	KindLicensePurchased      Kind = "license.purchased"
	KindDerivativeCreated     Kind = "derivative.created"
	KindLicenseConsumed       Kind = "license.consumed"
	KindParentAttributed      Kind = "derivative.parent_attributed"
	KindGovernanceTokenMinted Kind = "governance.token_minted"
	KindDisputeCreated        Kind = "governance.dispute_created"
	KindVoteCast              Kind = "governance.vote_cast"
	KindDisputeResolved       Kind = "governance.dispute_resolved"
)

// Payload is the closed set of event payloads. One implementation per Kind;
// Decode fails on anything else, so consumers can match exhaustively.
type Payload interface {
	Kind() Kind
}

type AssetMinted struct {
	AssetID     uint64 `json:"asset_id"`
	Owner       string `json:"owner"`
	MetadataRef string `json:"metadata_ref"`
	ContentHash string `json:"content_hash"`
}

type LicenseOfferCreated struct {
	AssetID    uint64 `json:"asset_id"`
	OfferIndex uint32 `json:"offer_index"`
	Owner      string `json:"owner"`
	PriceWei   uint64 `json:"price_wei"`
	LicenseRef string `json:"license_ref"`
	Expiry     int64  `json:"expiry"`
}

type LicensePurchased struct {
	AssetID    uint64 `json:"asset_id"`
	TokenID    uint64 `json:"token_id"`
	Buyer      string `json:"buyer"`
	OfferIndex uint32 `json:"offer_index"`
	PriceWei   uint64 `json:"price_wei"`
}

type DerivativeCreated struct {
	DerivativeID       uint64   `json:"derivative_id"`
	ParentIDs          []uint64 `json:"parent_ids"`
	Creator            string   `json:"creator"`
	DerivativeKind     string   `json:"kind"`
	IsCommercial       bool     `json:"is_commercial"`
	ConsumedLicenseIDs []uint64 `json:"consumed_license_ids"`
}

type LicenseConsumed struct {
	TokenID      uint64 `json:"token_id"`
	DerivativeID uint64 `json:"derivative_id"`
}

type ParentAttributed struct {
	DerivativeID uint64 `json:"derivative_id"`
	ParentID     uint64 `json:"parent_id"`
}

type GovernanceTokenMinted struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
	CostWei uint64 `json:"cost_wei"`
}

type DisputeCreated struct {
	DisputeID uint64 `json:"dispute_id"`
	AssetID   uint64 `json:"asset_id"`
	Reporter  string `json:"reporter"`
	Reason    string `json:"reason"`
}

type VoteCast struct {
	DisputeID  uint64 `json:"dispute_id"`
	Voter      string `json:"voter"`
	ForRemoval bool   `json:"for_removal"`
	Power      uint64 `json:"power"`
}

type DisputeResolved struct {
	DisputeID  uint64 `json:"dispute_id"`
	IPRevoked  bool   `json:"ip_revoked"`
	TotalVotes uint64 `json:"total_votes"`
}

func (AssetMinted) Kind() Kind           { return KindAssetMinted }
func (LicenseOfferCreated) Kind() Kind   { return KindLicenseOfferCreated }
func (LicensePurchased) Kind() Kind      { return KindLicensePurchased }
func (DerivativeCreated) Kind() Kind     { return KindDerivativeCreated }
func (LicenseConsumed) Kind() Kind       { return KindLicenseConsumed }
func (ParentAttributed) Kind() Kind      { return KindParentAttributed }
func (GovernanceTokenMinted) Kind() Kind { return KindGovernanceTokenMinted }
func (DisputeCreated) Kind() Kind        { return KindDisputeCreated }
func (VoteCast) Kind() Kind              { return KindVoteCast }
func (DisputeResolved) Kind() Kind       { return KindDisputeResolved }

// Encode serializes a payload for the ledger_events table.
func Encode(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// Decode rebuilds the concrete payload for a stored event. The kind set is
// closed: an unlisted kind is a corrupt log, not a soft miss.
func Decode(kind Kind, data []byte) (Payload, error) {
	var p Payload
	switch kind {
	case KindAssetMinted:
		p = &AssetMinted{}
	case KindLicenseOfferCreated:
		p = &LicenseOfferCreated{}
	case KindLicensePurchased:
		p = &LicensePurchased{}
	case KindDerivativeCreated:
		p = &DerivativeCreated{}
	case KindLicenseConsumed:
		p = &LicenseConsumed{}
	case KindParentAttributed:
		p = &ParentAttributed{}
	case KindGovernanceTokenMinted:
		p = &GovernanceTokenMinted{}
	case KindDisputeCreated:
		p = &DisputeCreated{}
	case KindVoteCast:
		p = &VoteCast{}
	case KindDisputeResolved:
		p = &DisputeResolved{}
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return deref(p), nil
}

func deref(p Payload) Payload {
	switch v := p.(type) {
	case *AssetMinted:
		return *v
	case *LicenseOfferCreated:
		return *v
	case *LicensePurchased:
		return *v
	case *DerivativeCreated:
		return *v
	case *LicenseConsumed:
		return *v
	case *ParentAttributed:
		return *v
	case *GovernanceTokenMinted:
		return *v
	case *DisputeCreated:
		return *v
	case *VoteCast:
		return *v
	case *DisputeResolved:
		return *v
	}
	return p
}
