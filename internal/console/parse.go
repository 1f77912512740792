package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/randchess/internal/model"
)

var ErrBadInput = errors.New("expected two squares, e.g. e2 e4")

// ParseMove reads a move written as two whitespace separated squares.
func ParseMove(line string) (from, to model.Position, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return model.NoPosition, model.NoPosition, ErrBadInput
	}
	if from, err = model.ParseSquare(strings.ToLower(fields[0])); err != nil {
		return model.NoPosition, model.NoPosition, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	if to, err = model.ParseSquare(strings.ToLower(fields[1])); err != nil {
		return model.NoPosition, model.NoPosition, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	return from, to, nil
}
