package export

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake client implementing DynamoDBAPI
type fakeDDB struct {
	calls     int
	items     int
	failFirst bool
	err       error
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, in *ddb.BatchWriteItemInput, _ ...func(*ddb.Options)) (*ddb.BatchWriteItemOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.failFirst {
		f.failFirst = false
		return &ddb.BatchWriteItemOutput{UnprocessedItems: in.RequestItems}, nil
	}
	for _, reqs := range in.RequestItems {
		f.items += len(reqs)
	}
	return &ddb.BatchWriteItemOutput{}, nil
}

func boardSnapshot(n int) *models.Snapshot {
	snap := &models.Snapshot{}
	for i := 1; i <= n; i++ {
		snap.Players = append(snap.Players, models.Player{
			PlayerIdentity: models.PlayerIdentity{ID: i, Name: fmt.Sprintf("P%02d", i), Team: "ATL"},
			Position:       models.WR,
		})
		snap.Rankings = append(snap.Rankings,
			models.Ranking{PlayerID: i, Convention: models.Half, Overall: i, PositionRank: i},
			models.Ranking{PlayerID: i, Convention: models.PPR, Overall: i + 1, PositionRank: i},
		)
	}
	snap.Stats = []models.StatLine{{PlayerID: 1, HalfPPRPts: 217, HalfPPRPtsPerGame: 13.6}}
	return snap
}

func testExporter(c DynamoDBAPI) *DynamoExporter {
	e := NewDynamoExporter(c, "fantasy_players")
	e.backoffStep = time.Millisecond
	return e
}

func TestExport_BatchingAndRetry(t *testing.T) {
	fc := &fakeDDB{failFirst: true}
	marker := models.RunMarker{RunID: uuid.New(), CompletedAt: time.Now()}

	err := testExporter(fc).Export(context.Background(), marker, boardSnapshot(30))
	require.NoError(t, err)

	// 25 + 5, the first batch retried once
	assert.Equal(t, 3, fc.calls)
	assert.Equal(t, 30, fc.items)
}

func TestExport_ClientError(t *testing.T) {
	fc := &fakeDDB{err: errors.New("throttled")}
	marker := models.RunMarker{RunID: uuid.New(), CompletedAt: time.Now()}

	err := testExporter(fc).Export(context.Background(), marker, boardSnapshot(3))
	assert.ErrorContains(t, err, "throttled")
}

func TestExport_EmptyBoard(t *testing.T) {
	fc := &fakeDDB{}
	err := testExporter(fc).Export(context.Background(), models.RunMarker{}, &models.Snapshot{})
	require.NoError(t, err)
	assert.Zero(t, fc.calls)
}

func TestBoardItems_HalfPPRFields(t *testing.T) {
	marker := models.RunMarker{RunID: uuid.New(), CompletedAt: time.Unix(1754013600, 0)}
	items := BoardItems(marker, boardSnapshot(2))
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "1", first["PlayerID"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1", first["HalfRank"].(*types.AttributeValueMemberN).Value, "half-PPR overall, not PPR")
	assert.Equal(t, "WR1", first["HalfPosRank"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "217.00", first["HalfPts"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "1754013600", first["UpdatedAt"].(*types.AttributeValueMemberN).Value)

	_, hasPts := items[1]["HalfPts"]
	assert.False(t, hasPts, "players without a stat line carry no points")
}
