package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/easel-labs/easel/pkg/cli/config"
	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/repository/memory"
	"github.com/easel-labs/easel/pkg/usecase"
	"github.com/easel-labs/easel/pkg/utils/async"
)

var (
	chatPrompt  = color.New(color.FgCyan, color.Bold)
	chatAction  = color.New(color.FgGreen)
	chatThink   = color.New(color.FgHiBlack)
	chatWarning = color.New(color.FgYellow)
	chatError   = color.New(color.FgRed)
)

func cmdChat() *cli.Command {
	var backendCfg config.Backend
	var paletteCfg config.Palette

	var flags []cli.Flag
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, paletteCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Interactive chat against an in-memory board",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			generator, err := backendCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize backend client")
			}

			palette, err := paletteCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load palette")
			}

			uc := usecase.New(memory.New(),
				usecase.WithGenerator(generator),
				usecase.WithPalette(palette),
			)
			session := uc.CreateSession()

			// Ctrl-C aborts the in-flight generation instead of the process;
			// a second interrupt while idle just reprints the prompt.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			async.Dispatch(ctx, func(ctx context.Context) error {
				for range sigCh {
					session.Cancel()
					chatWarning.Println("\ninterrupted")
				}
				return nil
			})

			fmt.Println("easel chat: type a prompt, or :help for commands")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				chatPrompt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				if strings.HasPrefix(line, ":") {
					if quit := runChatCommand(ctx, session, uc, line); quit {
						return nil
					}
					continue
				}

				req := &model.GenerateRequest{Message: line}
				err := session.Run(ctx, uc.Generator(), req, func(item *model.ChatHistoryItem) {
					printHistoryItem(item)
				})
				if err != nil {
					chatError.Printf("generation failed: %s\n", err.Error())
				}
			}
		},
	}
}

// runChatCommand handles one ":" command; returns true on quit
func runChatCommand(ctx context.Context, session *usecase.Session, uc *usecase.UseCases, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]

	index := -1
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			chatError.Printf("invalid index: %s\n", fields[1])
			return false
		}
		index = n
	}

	var err error
	switch cmd {
	case ":quit", ":exit", ":q":
		return true

	case ":help", ":h":
		fmt.Println("  :history            show session history")
		fmt.Println("  :groups             show review groups")
		fmt.Println("  :board              show board records")
		fmt.Println("  :accept <n>         accept history item n")
		fmt.Println("  :reject <n>         reject history item n")
		fmt.Println("  :accept-group <n>   accept review group n")
		fmt.Println("  :reject-group <n>   reject review group n")
		fmt.Println("  :quit               exit")

	case ":history":
		for i, item := range session.History() {
			fmt.Printf("[%d] ", i)
			printHistoryItem(item)
		}

	case ":groups":
		for i, g := range session.Groups() {
			marker := " "
			if g.WithCanvasChanges {
				marker = "*"
			}
			fmt.Printf("[%d]%s %d item(s), %s\n", i, marker, len(g.Items), g.Acceptance())
		}

	case ":board":
		records, listErr := uc.Store().List(ctx)
		if listErr != nil {
			err = listErr
			break
		}
		for _, rec := range records {
			fmt.Printf("  %s %s %v\n", rec.ID, rec.Type, rec.Props)
		}

	case ":accept":
		err = session.Accept(ctx, index)
	case ":reject":
		err = session.Reject(ctx, index)
	case ":accept-group":
		err = session.AcceptGroup(ctx, index)
	case ":reject-group":
		err = session.RejectGroup(ctx, index)

	default:
		chatError.Printf("unknown command: %s\n", cmd)
	}

	if err != nil {
		chatError.Printf("%s\n", err.Error())
	}
	return false
}

func printHistoryItem(item *model.ChatHistoryItem) {
	switch {
	case item.Type == model.HistoryItemPrompt:
		chatPrompt.Printf("you: %s\n", item.Prompt.Message)

	case item.Type == model.HistoryItemContinuation:
		chatThink.Println("...")

	case item.IsAction():
		a := item.Action
		suffix := ""
		if !a.Complete {
			suffix = " …"
		}
		switch {
		case a.Text != "":
			if a.Kind.IsMutating() {
				chatAction.Printf("%s: %s%s\n", a.Kind, a.Text, suffix)
			} else {
				chatThink.Printf("%s: %s%s\n", a.Kind, a.Text, suffix)
			}
		case a.Intent != "":
			chatAction.Printf("%s: %s%s\n", a.Kind, a.Intent, suffix)
		default:
			chatAction.Printf("%s%s\n", a.Kind, suffix)
		}
	}
}
