package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func TestSealOpenJSON_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("device-secret"), []byte("session-store"))
	in := payload{Token: "tok123", UserID: "11111111-1111-1111-1111-111111111111"}

	ct, nonce, err := SealJSON(in, key)
	require.NoError(t, err)
	require.NotEmpty(t, ct)
	require.Len(t, nonce, 12)

	var out payload
	require.NoError(t, OpenJSON(ct, nonce, key, &out))
	require.Equal(t, in, out)
}

func TestOpenJSON_WrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("device-secret"), []byte("session-store"))
	other := DeriveKey([]byte("other-secret"), []byte("session-store"))

	ct, nonce, err := SealJSON(payload{Token: "x"}, key)
	require.NoError(t, err)

	var out payload
	require.ErrorIs(t, OpenJSON(ct, nonce, other, &out), ErrOpenFailed)
}

func TestSealJSON_FreshNoncePerCall(t *testing.T) {
	key := DeriveKey([]byte("device-secret"), []byte("session-store"))

	_, n1, err := SealJSON(payload{Token: "x"}, key)
	require.NoError(t, err)
	_, n2, err := SealJSON(payload{Token: "x"}, key)
	require.NoError(t, err)
	require.NotEqual(t, n1, n2)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey([]byte("s"), []byte("salt"))
	b := DeriveKey([]byte("s"), []byte("salt"))
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestWipe(t *testing.T) {
	b := []byte("secret1")
	Wipe(b)
	for _, c := range b {
		require.Zero(t, c)
	}
	Wipe(nil) // must not panic
}
