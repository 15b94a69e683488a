package game

type State uint8

const (
	StateStartGame State = iota
	StateCompleteWord
	StateCompleteAttackWord
	StateLose
	StateInProgress
	StateWin
)

func (s State) String() string {
	switch s {
	case StateStartGame:
		return "StartGame"
	case StateCompleteWord:
		return "CompleteWord"
	case StateCompleteAttackWord:
		return "CompleteAttackWord"
	case StateLose:
		return "Lose"
	case StateInProgress:
		return "InProgress"
	case StateWin:
		return "Win"
	}
	return "Unknown"
}

// Over is true once the match has been decided for this player.
func (s State) Over() bool {
	return s == StateLose || s == StateWin
}
