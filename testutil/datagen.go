package testutil

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/hyperlane-xyz/lander/types"
)

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	bytes := make([]byte, length)
	r.Read(bytes)

	return bytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	randBytes := GenRandomByteArray(r, length)

	return hex.EncodeToString(randBytes)
}

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

// GenRandomUUID derives a UUID from the seeded source so fuzz runs are
// reproducible.
func GenRandomUUID(r *rand.Rand) uuid.UUID {
	var id uuid.UUID
	r.Read(id[:])
	// stamp version 4 bits so the value round-trips as a valid UUID
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80

	return id
}

// GenRandomPayload returns a ready-to-submit payload with random data and a
// random label.
func GenRandomPayload(r *rand.Rand) *types.FullPayload {
	return &types.FullPayload{
		Details: types.PayloadDetails{
			UUID:  GenRandomUUID(r),
			Label: fmt.Sprintf("msg-%s", GenRandomHexStr(r, 8)),
		},
		Data:            GenRandomByteArray(r, 64),
		SuccessCriteria: GenRandomByteArray(r, 16),
		Status:          types.PayloadReadyToSubmit,
	}
}

// GenRandomPayloads returns n random ready-to-submit payloads.
func GenRandomPayloads(r *rand.Rand, n int) []*types.FullPayload {
	payloads := make([]*types.FullPayload, 0, n)
	for i := 0; i < n; i++ {
		payloads = append(payloads, GenRandomPayload(r))
	}

	return payloads
}

// GenRandomTransaction returns a pending-inclusion transaction wrapping the
// given payloads, with a random nonce and hash.
func GenRandomTransaction(r *rand.Rand, payloads ...*types.FullPayload) *types.Transaction {
	details := make([]types.PayloadDetails, 0, len(payloads))
	for _, p := range payloads {
		details = append(details, p.Details)
	}

	tx := types.NewTransaction(GenRandomUUID(r), details, GenRandomByteArray(r, 32))
	tx.Nonce = uint256.NewInt(r.Uint64() % 1000)
	tx.Hash = GenRandomHexStr(r, 32)

	return tx
}

// GenChainID returns a random chain identifier.
func GenChainID(r *rand.Rand) string {
	return "testchain-" + GenRandomHexStr(r, 4)
}

// GenSignerAddress returns a random signer address string.
func GenSignerAddress(r *rand.Rand) string {
	return "0x" + GenRandomHexStr(r, 20)
}
