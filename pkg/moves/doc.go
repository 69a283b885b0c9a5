// Package moves evaluates and generates single-token moves.
//
// [TryMove] is the path evaluator: it walks the topology from a source slot
// through empty slots and prices the unique path to a destination. [NextStates]
// is the move generator: it applies the burrow movement rules to every token of
// a configuration and returns one child configuration per legal move.
//
// Movement rules:
//   - A token in the corridor moves only into its own room, and only when the
//     room holds nothing but empty slots and tokens of its type. It goes to the
//     deepest open slot it can reach.
//   - A token in a foreign room moves straight home when it can, and otherwise
//     to any reachable corridor slot.
//   - A token in its own room with a foreign token somewhere below it must
//     leave to a corridor slot so the foreign token can get out.
//   - A token in its own room with only its own type below never moves.
//   - No token ever stops on a junction.
package moves
