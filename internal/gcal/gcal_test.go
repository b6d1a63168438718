package gcal

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/oauth2"
)

type memoryTokenStore struct {
	tokens map[int64]string
	saves  int
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[int64]string)}
}

func (m *memoryTokenStore) Save(_ context.Context, userID int64, tokenJSON string) error {
	m.tokens[userID] = tokenJSON
	m.saves++
	return nil
}

func (m *memoryTokenStore) Get(_ context.Context, userID int64) (string, error) {
	raw, ok := m.tokens[userID]
	if !ok {
		return "", ErrNotConnected
	}
	return raw, nil
}

func (m *memoryTokenStore) Delete(_ context.Context, userID int64) error {
	delete(m.tokens, userID)
	return nil
}

type staticTokenSource struct {
	token *oauth2.Token
	err   error
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

var _ = ginkgo.Describe("persistingTokenSource", func() {
	var (
		store *memoryTokenStore
		inner *staticTokenSource
		src   *persistingTokenSource
	)

	ginkgo.BeforeEach(func() {
		store = newMemoryTokenStore()
		inner = &staticTokenSource{}
		src = &persistingTokenSource{
			ctx:    context.Background(),
			src:    inner,
			tokens: store,
			userID: 10,
			last:   "stale-access",
			logger: slog.Default(),
		}
	})

	ginkgo.It("persists a refreshed token back to the store", func() {
		inner.token = &oauth2.Token{
			AccessToken:  "fresh-access",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour),
		}

		token, err := src.Token()

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(token.AccessToken).To(gomega.Equal("fresh-access"))
		gomega.Expect(store.saves).To(gomega.Equal(1))

		var stored oauth2.Token
		gomega.Expect(json.Unmarshal([]byte(store.tokens[10]), &stored)).To(gomega.Succeed())
		gomega.Expect(stored.AccessToken).To(gomega.Equal("fresh-access"))
		gomega.Expect(stored.RefreshToken).To(gomega.Equal("refresh"))
	})

	ginkgo.It("does not rewrite the store while the token is unchanged", func() {
		inner.token = &oauth2.Token{AccessToken: "stale-access"}

		_, err := src.Token()

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(store.saves).To(gomega.BeZero())
	})

	ginkgo.It("saves only once for repeated calls with the same refreshed token", func() {
		inner.token = &oauth2.Token{AccessToken: "fresh-access"}

		_, err := src.Token()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, err = src.Token()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(store.saves).To(gomega.Equal(1))
	})
})
