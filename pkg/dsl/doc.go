/*
Package dsl provides a fluent Go builder for question graphs.

It is the programmatic counterpart of the YAML flow format, useful for
tests and for hosts that assemble dialogues at runtime.

Example usage:

	b := dsl.New()

	b.Add("product").
		Ask("What product are you sourcing?").
		Required().
		Go("call")

	b.Add("call").
		Choose("Want a specialist to call you?", "yes_call", "no").
		Branch("input == 'yes_call'", "thanks").
		Go("bye")

	b.Add("thanks").Terminal(domain.IntentHigh, "We'll be in touch.")
	b.Add("bye").Terminal(domain.IntentReportOnly, "Enjoy the report.")

	graph, err := b.Build("product")
*/
package dsl
