/*
Package nexi is a sourcing intake engine. It walks a buyer through a graph of
questions about the product they want to source, normalizes the answers into
an analysis request and runs that request through a compliance gate and an
external estimation service.

# Concept

The conversation is a pure state machine. The engine (internal/runtime)
takes a ConversationState and an answer and returns the next state; it never
mutates its input. Storage, locking, quotas and the estimator are ports with
in-memory and Redis adapters, so the same Service runs in a CLI, an HTTP
server or a test.

# Usage

	svc, err := nexi.New(
		nexi.WithBlacklist(entries),
		nexi.WithEstimator(estimator),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, prompt, err := svc.StartConversation(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(prompt.Text)

	state, step, err := svc.Answer(ctx, state.ID, "silicone phone case")
	...

	attempt := analysis.NewAttempt("attempt-1", analysis.Subject{UserID: "u1"})
	req, result, err := svc.AnalyzeConversation(ctx, state.ID, attempt)
*/
package nexi
