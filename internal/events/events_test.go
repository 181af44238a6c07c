// internal/events/events_test.go
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := []Payload{
		AssetMinted{
			AssetID:     1,
			Owner:       "0x1111111111111111111111111111111111111111",
			MetadataRef: "s3://bucket/content/abc",
			ContentHash: "0x4a5c000000000000000000000000000000000000000000000000000000000000",
		},
		LicenseOfferCreated{
			AssetID:    1,
			OfferIndex: 0,
			Owner:      "0x1111111111111111111111111111111111111111",
			PriceWei:   1000,
			LicenseRef: "s3://bucket/license/terms",
			Expiry:     1760000000,
		},
		LicensePurchased{AssetID: 1, TokenID: 1, Buyer: "0x2222222222222222222222222222222222222222", OfferIndex: 0, PriceWei: 1000},
		DerivativeCreated{
			DerivativeID:       2,
			ParentIDs:          []uint64{1},
			Creator:            "0x2222222222222222222222222222222222222222",
			DerivativeKind:     "remix",
			IsCommercial:       true,
			ConsumedLicenseIDs: []uint64{1},
		},
		LicenseConsumed{TokenID: 1, DerivativeID: 2},
		ParentAttributed{DerivativeID: 2, ParentID: 1},
		GovernanceTokenMinted{Account: "0x3333333333333333333333333333333333333333", Amount: 100, CostWei: 100000000000000000},
		DisputeCreated{DisputeID: 1, AssetID: 1, Reporter: "0x3333333333333333333333333333333333333333", Reason: "plagiarism"},
		VoteCast{DisputeID: 1, Voter: "0x3333333333333333333333333333333333333333", ForRemoval: true, Power: 100},
		DisputeResolved{DisputeID: 1, IPRevoked: true, TotalVotes: 150},
	}

	for _, p := range payloads {
		data, err := Encode(p)
		require.NoError(t, err, "encode %s", p.Kind())

		decoded, err := Decode(p.Kind(), data)
		require.NoError(t, err, "decode %s", p.Kind())
		assert.Equal(t, p, decoded)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(Kind("asset.transferred"), []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode(KindAssetMinted, []byte(`{`))
	assert.Error(t, err)
}

func TestRecorderAssignsSequenceByQueueOrder(t *testing.T) {
	r := NewRecorder()
	r.Emit(DerivativeCreated{DerivativeID: 2, ParentIDs: []uint64{1}})
	r.Emit(LicenseConsumed{TokenID: 1, DerivativeID: 2})
	r.Emit(ParentAttributed{DerivativeID: 2, ParentID: 1})

	require.Len(t, r.pending, 3)
	assert.Equal(t, KindDerivativeCreated, r.pending[0].Kind())
	assert.Equal(t, KindLicenseConsumed, r.pending[1].Kind())
	assert.Equal(t, KindParentAttributed, r.pending[2].Kind())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", r.TxID().String())
}
