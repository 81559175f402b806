// Package ascii renders a broker.Snapshot to a terminal for the operator
// watch mode (cmd/hive-koth-server -watch): a read-only inspector, never a
// client-facing surface, styled the way internal/ui/cli prints the board.
package ascii

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hiveking/koth/internal/broker"
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"golang.org/x/term"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

// printCentered indents block so it sits in the middle of the terminal,
// falling back to no indent when the width can't be determined.
func printCentered(block string) {
	terminalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		if w := displayWidth(line); w > blockWidth {
			blockWidth = w
		}
	}
	indent := (terminalWidth - blockWidth) / 2
	if indent < 0 {
		indent = 0
	}
	for _, line := range lines {
		fmt.Printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}

var pieceLetters = map[hexboard.Species]string{
	hexboard.Queen:       "Q",
	hexboard.Ant:         "A",
	hexboard.Spider:      "S",
	hexboard.Beetle:      "B",
	hexboard.Grasshopper: "G",
}

var whiteStyle = lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0"))
var blackStyle = lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("7"))

func pieceStyle(colour hexboard.Colour) lipgloss.Style {
	if colour == hexboard.White {
		return whiteStyle
	}
	return blackStyle
}

// Render prints snap to stdout: one line per occupied cell, axial
// coordinates, stack bottom-to-top, followed by seats, queue, and the
// tail of the match log. It never reads or writes match state.
func Render(snap broker.Snapshot) {
	fmt.Print("\033c") // clear screen, like cli.UI's clearScreen mode

	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d -- %s to move -- %ds left\n\n", snap.TurnNumber, snap.CurrentPlayer, snap.TimeLeft)
	for _, cell := range snap.Board {
		fmt.Fprintf(&b, "  (%3d,%3d) ", cell.Hex.Q, cell.Hex.R)
		for _, p := range cell.Stack {
			letter, ok := pieceLetters[p.Type]
			if !ok {
				letter = "?"
			}
			fmt.Fprint(&b, pieceStyle(p.Color).Render(letter))
		}
		fmt.Fprintln(&b)
	}
	printCentered(b.String())

	fmt.Println()
	printSeat("White", snap.White)
	printSeat("Black", snap.Black)
	if len(snap.Queue) > 0 {
		fmt.Printf("Queue: %s\n", strings.Join(snap.Queue, ", "))
	}

	if snap.Winner != match.NoOutcome {
		printCentered(lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 2).
			Render(fmt.Sprintf("*** %s ***", snap.Winner)))
	}

	fmt.Println()
	tail := snap.Log
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	for _, line := range tail {
		fmt.Println("  " + line)
	}
}

func printSeat(label string, s *broker.SeatView) {
	if s == nil {
		fmt.Printf("%s: (empty)\n", label)
		return
	}
	role := "human"
	if s.IsBot {
		role = "bot"
	}
	fmt.Printf("%s: %s (%s, %d wins)\n", label, s.Nickname, role, s.Wins)
}
