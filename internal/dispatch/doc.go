// Package dispatch implements the downstream delta dissemination. Each
// consumer gets a private session: its own tick cadence and its own baseline
// of last-sent values. A tick diffs the shared cache against that baseline
// and pushes one batched frame when anything changed; a quiet tick emits
// nothing at all.
package dispatch
