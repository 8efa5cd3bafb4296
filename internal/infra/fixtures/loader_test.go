package fixtures

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	commandmocks "stayhub/internal/app/commands/mocks"
	listinghandlers "stayhub/internal/app/handlers/listings"
)

func TestLoadDispatchesEverySnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := commandmocks.NewMockBus(ctrl)
	var ids []string
	bus.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd any) (any, error) {
		snap := cmd.(listinghandlers.SyncListingCommand).Snapshot
		ids = append(ids, snap.ID)
		if snap.ID == "bad" {
			return nil, errors.New("listings: title is required")
		}
		return listinghandlers.SyncListingResult{ListingID: snap.ID, Created: true}, nil
	}).Times(3)

	doc := `[{"id":"a","host_id":"h"},{"id":"bad","host_id":"h"},{"id":"b","host_id":"h"}]`
	sum, err := Loader{Bus: bus}.Load(context.Background(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sum.Imported != 2 || sum.Failed != 1 {
		t.Fatalf("summary: %+v", sum)
	}
	if strings.Join(ids, ",") != "a,bad,b" {
		t.Fatalf("order: %v", ids)
	}
}

func TestLoadFromMissingFileIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := Loader{Bus: commandmocks.NewMockBus(ctrl)}
	sum, err := l.LoadFrom(context.Background(), Files{}, filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || sum != (Summary{}) {
		t.Fatalf("sum=%+v err=%v", sum, err)
	}
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := Loader{Bus: commandmocks.NewMockBus(ctrl)}
	if _, err := l.Load(context.Background(), strings.NewReader(`{"id":1}`)); err == nil {
		t.Fatal("expected decode error")
	}
	if sum, err := l.Load(context.Background(), io.LimitReader(strings.NewReader(""), 0)); err != nil || sum.Imported != 0 {
		t.Fatalf("empty document: %+v %v", sum, err)
	}
}
