package coin

import (
	"math/big"

	"degenerus/core/events"
)

// bumpLeaderboard updates a player's seat with a monotonically growing
// score. The board stays sorted descending, capped at BoardSize, and a
// reverse rank index gives O(1) membership so non-qualifying scores skip
// the board load entirely once full.
func (e *Engine) bumpLeaderboard(name string, player [20]byte, score *big.Int) error {
	board, err := e.state.Leaderboard(name)
	if err != nil {
		return err
	}
	rank, seated, err := e.state.BoardRank(name, player)
	if err != nil {
		return err
	}
	if seated {
		board.Entries[rank].Score = new(big.Int).Set(score)
		return e.sift(name, board, rank)
	}
	if len(board.Entries) >= BoardSize {
		tail := board.Entries[len(board.Entries)-1]
		if score.Cmp(tail.Score) <= 0 {
			return nil
		}
		if err := e.state.DeleteBoardRank(name, tail.Player); err != nil {
			return err
		}
		e.emitter.Emit(events.BoardDisplaced{Board: name, Player: tail.Player})
		board.Entries = board.Entries[:len(board.Entries)-1]
	}
	board.Entries = append(board.Entries, BoardEntry{Player: player, Score: new(big.Int).Set(score)})
	return e.sift(name, board, len(board.Entries)-1)
}

// sift bubbles the entry at the given rank toward the head until the board
// is sorted again, rewriting the reverse index for every seat it crosses.
func (e *Engine) sift(name string, board *Leaderboard, rank int) error {
	for rank > 0 && board.Entries[rank].Score.Cmp(board.Entries[rank-1].Score) > 0 {
		board.Entries[rank], board.Entries[rank-1] = board.Entries[rank-1], board.Entries[rank]
		if err := e.state.PutBoardRank(name, board.Entries[rank].Player, rank); err != nil {
			return err
		}
		rank--
	}
	if err := e.state.PutBoardRank(name, board.Entries[rank].Player, rank); err != nil {
		return err
	}
	return e.state.PutLeaderboard(name, board)
}

// LeaderboardOf exposes a board for queries.
func (e *Engine) LeaderboardOf(name string) (*Leaderboard, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.Leaderboard(name)
}
