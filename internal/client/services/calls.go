package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
)

const callHistoryPath = "/api/call-history"

type CallService interface {
	// List returns the call history, most recent first.
	List(ctx context.Context) ([]models.CallRecord, error)
}

type callService struct {
	doer client.Doer
}

func NewCallService(d client.Doer) CallService {
	return &callService{doer: d}
}

func (s *callService) List(ctx context.Context) ([]models.CallRecord, error) {
	calls, err := client.Call[[]models.CallRecord](ctx, s.doer, http.MethodGet, callHistoryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list call history: %w", err)
	}
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].StartTime.After(calls[j].StartTime)
	})
	return calls, nil
}
