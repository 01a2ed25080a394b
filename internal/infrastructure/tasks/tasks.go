// Package tasks defines the asynq task types and their handlers. The only
// producer today is the pricing service, which offloads audit-row writes so
// a slow insert never sits on the /predict path.
package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/contextx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	TypeRecordPrediction = "prediction:record"

	QueueDefault = "default"
	QueueAudit   = "audit"
)

// Queues is the queue/priority map the asynq server consumes.
func Queues() map[string]int {
	return map[string]int{
		QueueDefault: 5,
		QueueAudit:   10,
	}
}

// Recorder enqueues prediction audit tasks.
type Recorder struct {
	client *asynq.Client
}

func NewRecorder(client *asynq.Client) *Recorder {
	return &Recorder{client: client}
}

func (r *Recorder) EnqueueRecord(ctx context.Context, prediction entity.Prediction) error {
	payload, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	task := asynq.NewTask(TypeRecordPrediction, payload)

	if _, err := r.client.EnqueueContext(ctx, task, asynq.Queue(QueueAudit)); err != nil {
		return fmt.Errorf("asynq.Enqueue: %w", err)
	}

	return nil
}

type predictionWriter interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
}

// HandleRecordPrediction returns the handler persisting audit rows.
func HandleRecordPrediction(repo predictionWriter) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var prediction entity.Prediction
		if err := json.Unmarshal(task.Payload(), &prediction); err != nil {
			// A payload that never unmarshals will never succeed:
			// drop it instead of retrying forever.
			return fmt.Errorf("json.Unmarshal: %v: %w", err, asynq.SkipRetry)
		}

		if err := repo.Create(ctx, &prediction); err != nil {
			return fmt.Errorf("predictionRepository.Create: %w", err)
		}

		logger(ctx).Debug("prediction audit row persisted", "prediction_id", prediction.ID)

		return nil
	}
}
