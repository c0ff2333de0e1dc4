// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import "context"

// Snapshot is one increment of an in-progress research run: the
// conversation so far plus the messages added since the previous snapshot.
// Tool-call announcements appear as assistant messages with ToolCalls set,
// so a caller can show progress before the answer arrives.
type Snapshot struct {
	Messages []Message
	New      []Message

	// Err is set on the final snapshot when the model backend failed.
	Err error
}

// Stream runs the research loop and yields a Snapshot after every model
// turn and every round of tool results. The channel is closed when the run
// completes or errors. The operation is pull-based: a caller that stops
// consuming and cancels ctx abandons the run, and no other cancel signal
// exists.
func (a *Agent) Stream(ctx context.Context, query string) <-chan Snapshot {
	out := make(chan Snapshot)

	go func() {
		defer close(out)

		messages := []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: query},
		}
		specs := Specs(a.registry.Tools())

		emit := func(snap Snapshot) bool {
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for turn := 0; turn < a.maxTurns; turn++ {
			reply, err := a.backend.Chat(ctx, messages, specs)
			if err != nil {
				emit(Snapshot{Messages: messages, Err: err})
				return
			}
			messages = append(messages, reply)
			if !emit(Snapshot{Messages: messages, New: []Message{reply}}) {
				return
			}

			if len(reply.ToolCalls) == 0 {
				return
			}

			results := a.dispatch(ctx, reply.ToolCalls)
			var added []Message
			for i, call := range reply.ToolCalls {
				added = append(added, Message{
					Role:     RoleTool,
					ToolName: call.Function.Name,
					Content:  results[i],
				})
			}
			messages = append(messages, added...)
			if !emit(Snapshot{Messages: messages, New: added}) {
				return
			}
		}
	}()

	return out
}
