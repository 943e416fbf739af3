package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/schedsync/internal/common"
)

var ErrAmbiguousRef = errors.New("ambiguous reference")

// resolve finds the single item a user reference points at: "#<n>" matches
// a server id, anything else a unique local id prefix.
func resolve[T any](items []T, ref string, localID func(*T) string, serverID func(*T) int64) (*T, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", common.ErrorValidation)
	}

	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad server id %q", common.ErrorValidation, rest)
		}
		for i := range items {
			if serverID(&items[i]) == id {
				return &items[i], nil
			}
		}
		return nil, fmt.Errorf("%s: %w", ref, common.ErrorNotFound)
	}

	var found *T
	for i := range items {
		if !strings.HasPrefix(localID(&items[i]), ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%s: %w", ref, ErrAmbiguousRef)
		}
		found = &items[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", ref, common.ErrorNotFound)
	}
	return found, nil
}

// ShortID is the prefix of a local id shown in listings.
func ShortID(localID string) string {
	if len(localID) > 8 {
		return localID[:8]
	}
	return localID
}
