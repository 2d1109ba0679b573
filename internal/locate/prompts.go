package locate

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert GUI interpreter. You analyze screenshots and answer questions about what they contain, responding only in the requested format."

// cursorPrompt asks which numbered marker is closest to the target. Earlier
// reply problems are fed back so the model can avoid repeating them.
func cursorPrompt(target string, numCursors int, exceptions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The attached image is a screenshot with %d numbered cursors drawn on top, labelled 1 to %d.\n", numCursors, numCursors)
	fmt.Fprintf(&b, "The target is: %q.\n", target)
	b.WriteString("Identify the position of the target, the position of each cursor, and which cursor is closest to the target.\n")
	b.WriteString("Respond with a single JSON object inside a triple-backtick code fence, with keys:\n")
	b.WriteString(`  "target": the target description` + "\n")
	b.WriteString(`  "target_position": where the target is in the screenshot` + "\n")
	b.WriteString(`  "cursor_positions": where the numbered cursors are` + "\n")
	b.WriteString(`  "closest": the number of the cursor closest to the target` + "\n")
	if len(exceptions) > 0 {
		b.WriteString("Previous replies could not be used:\n")
		for _, exc := range exceptions {
			fmt.Fprintf(&b, "  - %s\n", exc)
		}
		b.WriteString("Avoid these problems.\n")
	}
	return b.String()
}

// gridPrompt asks which grid cells the target covers. On correction rounds
// the previously chosen cells are highlighted on the image and listed here.
func gridPrompt(target string, gridSize int, previous []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The attached image is a screenshot overlaid with a %dx%d grid.\n", gridSize, gridSize)
	fmt.Fprintf(&b, "Rows are numbered 1 to %d top to bottom and columns 1 to %d left to right, with labels in the red margins.\n", gridSize, gridSize)
	fmt.Fprintf(&b, "The target is: %q.\n", target)
	b.WriteString("List every grid cell the target covers.\n")
	b.WriteString("Respond with a single JSON object inside a triple-backtick code fence, with key:\n")
	b.WriteString(`  "cells": an array of {"row": <int>, "col": <int>} objects` + "\n")
	if len(previous) > 0 {
		fmt.Fprintf(&b, "Your previous answer selected the highlighted cells: %s.\n", strings.Join(previous, ", "))
		b.WriteString("Inspect the highlighted region and correct your answer if any cell is wrong; otherwise repeat it.\n")
	}
	return b.String()
}
