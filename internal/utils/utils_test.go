package utils

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, h.Verify("hunter2", hash))
	assert.False(t, h.Verify("hunter3", hash))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}

func TestJWTRoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("s3cret", time.Minute)
	p := model.Principal{ID: "u1", Username: "alice", Role: model.RoleManager, Age: 33}

	tok, err := issuer.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.ExpiresAt, 5*time.Second)

	got, err := issuer.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestJWTRejects(t *testing.T) {
	issuer := NewJWTIssuer("s3cret", time.Minute)
	p := model.Principal{ID: "u1", Username: "alice", Role: model.RoleCustomer, Age: 20}

	other, err := NewJWTIssuer("different", time.Minute).Issue(p)
	require.NoError(t, err)
	_, err = issuer.Verify(other.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", p, -time.Minute)
	require.NoError(t, err)
	_, err = issuer.Verify(expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a token without the age claim can not be turned into a principal
	noAge := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "customer",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	raw, err := noAge.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateQRCode(t *testing.T) {
	content := TicketQRContent("t-123")
	assert.Contains(t, content, "t-123")

	img, err := GenerateQRCode(content, 128)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Width)
}
