package synth

import (
	"context"

	"github.com/diogo/dstchat/internal/classify"
	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/models"
)

// Response is everything synthesized for one question
type Response struct {
	Topics         []classify.Topic
	Visualizations []models.Visualization
	Table          models.DataTable
}

// Pipeline classifies a question and builds its charts and table
type Pipeline struct{}

// NewPipeline creates the default synthesis pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Synthesize runs classification and both synthesizers. It is all-or-nothing:
// on error the partial response is discarded.
func (p *Pipeline) Synthesize(ctx context.Context, query string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, apierrors.NewSynthesisError(query, err)
	}

	topics := classify.Classify(query)

	charts, err := Visualizations(topics)
	if err != nil {
		return Response{}, apierrors.NewSynthesisError(query, err)
	}

	return Response{
		Topics:         topics,
		Visualizations: charts,
		Table:          Table(topics),
	}, nil
}
