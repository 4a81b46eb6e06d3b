/*
Package domain contains the core models of the Nexi sourcing intake.

It defines the question graph (QuestionNode, Transition), the answer
variant captured at each node, the conversation snapshot, the normalized
AnalysisRequest handed to the estimation pipeline, the AnalysisResult it
returns, and the error taxonomy shared by every layer. The package has
no I/O and no third-party dependencies.

# Key Entities

  - QuestionNode: a step of the intake dialogue (text, choice, number, file or terminal).
  - Answer: a discriminated value; SKIPPED and NOT_SURE are first-class sentinels.
  - ConversationState: pointer, accumulated answers, transcript and visit path.
  - AnalysisRequest: the flat record consumed by the Compliance Gate and the estimator.
  - AnalysisResult: the normalized cost and risk breakdown.
*/
package domain
