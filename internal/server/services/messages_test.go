package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "poster", "pw")

	m, err := f.messages.Post(context.Background(), u.ID, strings.Repeat("é", 140))
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	for _, text := range []string{"", strings.Repeat("x", 141)} {
		_, err := f.messages.Post(context.Background(), u.ID, text)
		assert.ErrorIs(t, err, common.ErrorInvalidMessage)
	}

	_, err = f.messages.Post(context.Background(), 404, "orphan")
	assert.ErrorIs(t, err, common.ErrorReference)
}
