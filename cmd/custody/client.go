package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

const requestTimeout = 30 * time.Second

type apiClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func getClient() (*apiClient, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state["apiserver"]
	if !ok || address == "" {
		return nil, errors.New("set apiserver with `config set apiserver`")
	}

	return &apiClient{
		baseURL: strings.TrimSuffix(address, "/"),
		token:   state["token"],
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *apiClient) get(path string) ([]byte, error) {
	return c.do(http.MethodGet, path, nil)
}

func (c *apiClient) post(path string, body interface{}) ([]byte, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *apiClient) delete(path string) ([]byte, error) {
	return c.do(http.MethodDelete, path, nil)
}

func (c *apiClient) do(method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to api server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		errResp := struct {
			Error string `json:"error"`
		}{}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return respBody, nil
}

// assets is the request form of an asset set.
type assets struct {
	Tokens []string `json:"tokens,omitempty"`
	Nfts   []uint64 `json:"nfts,omitempty"`
}

func assetFlags(prefix, usage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  prefix + "token",
			Usage: usage + " token quantity, ie. \"1.0000 XPR@eosio.token\"",
		},
		&cli.StringSliceFlag{
			Name:  prefix + "nft",
			Usage: usage + " nft id",
		},
	}
}

func parseAssetFlags(ctx *cli.Context, prefix string) (assets, error) {
	nfts := make([]uint64, 0)
	for _, s := range ctx.StringSlice(prefix + "nft") {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return assets{}, fmt.Errorf("invalid nft id %q", s)
		}
		nfts = append(nfts, id)
	}
	return assets{Tokens: ctx.StringSlice(prefix + "token"), Nfts: nfts}, nil
}

func pageParams(ctx *cli.Context) url.Values {
	params := url.Values{}
	if page := ctx.Int("page"); page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if size := ctx.Int("size"); size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	return params
}

func withQuery(path string, params url.Values) string {
	if len(params) <= 0 {
		return path
	}
	return path + "?" + params.Encode()
}

var pageFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "page",
		Usage: "the number of the page to list",
	},
	&cli.IntFlag{
		Name:  "size",
		Usage: "the number of entries per page",
	},
}
