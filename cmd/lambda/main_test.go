package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecovalley"
)

type stubCoordinator struct {
	resp ecovalley.CoordinatorResponse
	err  error
}

func (s stubCoordinator) Process(ctx context.Context, req ecovalley.SuggestRequest) (ecovalley.CoordinatorResponse, error) {
	return s.resp, s.err
}

type recordingNotifier struct {
	notified int
	err      error
}

func (r *recordingNotifier) Notify(ctx context.Context, resp ecovalley.CoordinatorResponse) error {
	r.notified++
	return r.err
}

func TestHandler(t *testing.T) {
	want := ecovalley.CoordinatorResponse{
		Recommendation: ecovalley.Recommendation{
			RecommendedMaterials: []ecovalley.MaterialScore{{Material: "Bamboo", Score: 80.93, Rank: 1}},
		},
	}

	tests := []struct {
		name       string
		coord      stubCoordinator
		notifyErr  error
		wantErr    bool
		wantNotify int
	}{
		{name: "success", coord: stubCoordinator{resp: want}, wantNotify: 1},
		{name: "notify failure is not fatal", coord: stubCoordinator{resp: want}, notifyErr: errors.New("slack down"), wantNotify: 1},
		{name: "coordinator failure", coord: stubCoordinator{err: ecovalley.NotFoundf("material %q", "Unobtainium")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{err: tt.notifyErr}
			flushed := 0
			flush := func(context.Context) error {
				flushed++
				return nil
			}

			resp, err := newHandler(tt.coord, n, flush)(context.Background(), ecovalley.SuggestRequest{})
			assert.Equal(t, 1, flushed)
			assert.Equal(t, tt.wantNotify, n.notified)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ecovalley.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, resp)
		})
	}
}
