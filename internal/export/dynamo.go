package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the exporter
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

const (
	maxBatch    = 25
	maxAttempts = 6
)

// DynamoExporter mirrors each published board into a DynamoDB table keyed by PlayerID.
// Items are overwritten on every run; players that drop off the board are left behind
// with an older RunID.
type DynamoExporter struct {
	client DynamoDBAPI
	table  string

	backoffStep time.Duration
}

// NewDynamoExporter creates an exporter writing to table
func NewDynamoExporter(client DynamoDBAPI, table string) *DynamoExporter {
	return &DynamoExporter{
		client:      client,
		table:       table,
		backoffStep: 120 * time.Millisecond,
	}
}

// Export writes one item per published player, carrying the half-PPR ranking and points
func (e *DynamoExporter) Export(ctx context.Context, marker models.RunMarker, snap *models.Snapshot) error {
	start := time.Now()
	err := e.export(ctx, marker, snap)

	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordError("export", "dynamodb")
	}
	metrics.RecordSync("export", status, time.Since(start).Seconds())

	return err
}

func (e *DynamoExporter) export(ctx context.Context, marker models.RunMarker, snap *models.Snapshot) error {
	items := BoardItems(marker, snap)
	if len(items) == 0 {
		return nil
	}

	for i := 0; i < len(items); i += maxBatch {
		end := i + maxBatch
		if end > len(items) {
			end = len(items)
		}

		reqs := make([]types.WriteRequest, 0, end-i)
		for _, item := range items[i:end] {
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		if err := e.batchWriteWithRetry(ctx, reqs); err != nil {
			return fmt.Errorf("batch write board items: %w", err)
		}
	}

	log.Info().
		Str("table", e.table).
		Int("items", len(items)).
		Msg("Board mirrored to DynamoDB")

	return nil
}

func (e *DynamoExporter) batchWriteWithRetry(ctx context.Context, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{e.table: reqs},
	}
	backoff := e.backoffStep

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := e.client.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += e.backoffStep
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", e.table)
}

// BoardItems builds one DynamoDB item per player in snap
func BoardItems(marker models.RunMarker, snap *models.Snapshot) []map[string]types.AttributeValue {
	halfRanks := make(map[int]models.Ranking, len(snap.Rankings))
	for _, r := range snap.Rankings {
		if r.Convention == models.Half {
			halfRanks[r.PlayerID] = r
		}
	}
	lines := make(map[int]models.StatLine, len(snap.Stats))
	for _, s := range snap.Stats {
		lines[s.PlayerID] = s
	}

	updated := strconv.FormatInt(marker.CompletedAt.Unix(), 10)
	items := make([]map[string]types.AttributeValue, 0, len(snap.Players))
	for _, p := range snap.Players {
		item := map[string]types.AttributeValue{
			"PlayerID":  &types.AttributeValueMemberS{Value: strconv.Itoa(p.ID)}, // PK
			"Player":    &types.AttributeValueMemberS{Value: p.Name},
			"Pos":       &types.AttributeValueMemberS{Value: string(p.Position)},
			"Team":      &types.AttributeValueMemberS{Value: string(p.Team)},
			"ByeWeek":   &types.AttributeValueMemberN{Value: strconv.Itoa(p.ByeWeek)},
			"RunID":     &types.AttributeValueMemberS{Value: marker.RunID.String()},
			"UpdatedAt": &types.AttributeValueMemberN{Value: updated},
		}
		if r, ok := halfRanks[p.ID]; ok {
			item["HalfRank"] = &types.AttributeValueMemberN{Value: strconv.Itoa(r.Overall)}
			item["HalfPosRank"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("%s%d", p.Position, r.PositionRank)}
		}
		if s, ok := lines[p.ID]; ok {
			item["HalfPts"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(s.HalfPPRPts, 'f', 2, 64)}
			item["HalfPtsPerGame"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(s.HalfPPRPtsPerGame, 'f', 1, 64)}
		}
		items = append(items, item)
	}
	return items
}
