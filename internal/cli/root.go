package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to mediavault (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		a.screen = "main"
		fmt.Printf("mv (%d pending)> ", a.svc.PendingConversionCount())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			fmt.Println("Available commands: (l)ist, show, add, rename, delete, convert, uploads, refresh, exit")
		case "list", "l":
			a.list(ctx, false)
		case "refresh", "sync":
			a.list(ctx, true)
		case "show":
			a.show(ctx)
		case "add":
			a.add(ctx)
		case "rename":
			a.rename(ctx)
		case "delete":
			a.delete(ctx)
		case "convert":
			a.convert(ctx)
		case "uploads":
			a.uploads(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}
