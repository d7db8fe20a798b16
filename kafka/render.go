package kafka

import (
	"context"

	"wisdombot/logx"
	"wisdombot/types"
)

// NewRenderConsumer builds a consumer for the render-requests topic. submit
// is called once per valid request, synchronously, so requests render one at
// a time; a submit error leaves the message unmarked for redelivery after a
// restart.
func NewRenderConsumer(brokers []string, topic, groupID string, submit func(ctx context.Context, req *types.RenderRequest) error) (*Consumer, error) {
	return NewConsumer(ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		Handler: renderHandler(submit),
	})
}

func renderHandler(submit func(ctx context.Context, req *types.RenderRequest) error) *TypedMessageHandler[types.RenderRequest] {
	return &TypedMessageHandler[types.RenderRequest]{
		Validate: func(msg *types.RenderRequest) bool {
			if msg.JobID == "" {
				log := logx.WithComponent("kafka")
				log.Warn().Msg("render request missing job_id, skipping")
				return false
			}
			return true
		},
		Process:    submit,
		AlwaysMark: true,
	}
}
