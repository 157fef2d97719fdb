package session

// Built-in example documents. A comparison of exactly this pair is treated
// as a demo run and is not recorded in history.
const (
	ExampleLabelA = "Contract_v1.txt"
	ExampleLabelB = "Contract_v2.txt"

	ExampleDocumentA = `Contract Agreement
Date: January 1, 2024
Party A: Tech Corp
Party B: John Doe

1. Term: This agreement shall last for 12 months.
2. Compensation: Party B shall be paid $50 per hour.
3. Termination: 2 weeks notice required.
`

	ExampleDocumentB = `Contract Agreement
Date: January 15, 2024
Party A: Tech Corp
Party B: John Doe

1. Term: This agreement shall last for 24 months.
2. Compensation: Party B shall be paid $60 per hour.
3. Termination: 4 weeks notice required immediately.
`
)

// isExamplePair reports whether the inputs are byte-identical to the
// built-in example documents.
func isExamplePair(docA, docB string) bool {
	return docA == ExampleDocumentA && docB == ExampleDocumentB
}
