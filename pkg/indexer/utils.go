package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/elastic_client"
)

// DeleteOldIndexes removes every <prefix>-<number> index except keep. Indexes
// of other feeds whose id merely starts with the same text are left alone.
func DeleteOldIndexes(ctx context.Context, prefix string, keep string) error {
	catReq := esapi.CatIndicesRequest{
		Index:  []string{prefix + "-*"},
		Format: "json",
	}

	resp, err := catReq.Do(ctx, elastic_client.Client)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("listing indexes %s-*: %s", prefix, resp.Status())
	}

	var indexes []struct {
		Index string `json:"index"`
	}

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(responseBytes, &indexes); err != nil {
		return err
	}

	for _, index := range indexes {
		if index.Index == keep || !isGeneration(prefix, index.Index) {
			continue
		}

		deleteReq := esapi.IndicesDeleteRequest{
			Index: []string{index.Index},
		}

		deleteResp, err := deleteReq.Do(ctx, elastic_client.Client)
		if err != nil {
			return err
		}
		deleteResp.Body.Close()

		if deleteResp.IsError() {
			return fmt.Errorf("deleting index %s: %s", index.Index, deleteResp.Status())
		}

		log.Info().Str("index", index.Index).Msg("Deleted old index")
	}

	return nil
}

// isGeneration reports whether name is prefix followed by a dash and a
// numeric suffix.
func isGeneration(prefix string, name string) bool {
	suffix, found := strings.CutPrefix(name, prefix+"-")
	if !found || suffix == "" {
		return false
	}

	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
