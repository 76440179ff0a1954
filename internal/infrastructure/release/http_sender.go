package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/tdex-network/custodyd/pkg/circuitbreaker"
)

const requestTimeout = 15 * time.Second

// Request is the body posted to the host for every release.
type Request struct {
	ID     uint64   `json:"id"`
	To     string   `json:"to"`
	Tokens []string `json:"tokens,omitempty"`
	Nfts   []uint64 `json:"nfts,omitempty"`
	Memo   string   `json:"memo"`
}

type httpSender struct {
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

// NewHTTPSender returns a ReleaseSender posting release requests as JSON to
// the given endpoint. The release id is sent as Idempotency-Key so that the
// host can discard redeliveries.
func NewHTTPSender(endpoint string) (ports.ReleaseSender, error) {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid release endpoint, must be a valid http URL")
	}
	return &httpSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		cb:       circuitbreaker.NewCircuitBreaker("release endpoint"),
	}, nil
}

func (s *httpSender) SendRelease(ctx context.Context, release domain.Release) error {
	body, err := json.Marshal(newRequest(release))
	if err != nil {
		return err
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, s.endpoint, bytes.NewReader(body),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", strconv.FormatUint(release.ID, 10))

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf(
				"release endpoint replied with %d: %s", resp.StatusCode, msg,
			)
		}
		return nil, nil
	})
	return err
}

func newRequest(release domain.Release) Request {
	tokens := make([]string, 0, len(release.Assets.Tokens))
	for _, q := range release.Assets.Tokens {
		tokens = append(tokens, q.String())
	}
	return Request{
		ID:     release.ID,
		To:     release.To,
		Tokens: tokens,
		Nfts:   release.Assets.Nfts,
		Memo:   release.Memo,
	}
}
