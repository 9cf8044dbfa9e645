package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yuimhosin/datadashboard/internal/conversation"
	"github.com/yuimhosin/datadashboard/internal/model"
)

const (
	cmdExit    = "/exit"
	cmdQuit    = "/quit"
	cmdHistory = "/history"
	cmdHelp    = "/help"
)

// 对话为空时的提示，不计入对话历史
const (
	emptyHint    = "向我諮詢數據合規、貿易情報或養老產業戰略。"
	thinkingHint = "AI 正在思考..."
)

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "與研究助手對話",
		Long: `與研究助手對話

每輪都會把完整對話歷史發送給服務端。
輸入 /history 查看對話記錄，/exit 退出。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := conversation.NewStore(a.client())
			return runChatLoop(ctx, store, a.in, a.out, isTerminal(a.in))
		},
	}
}

// runChatLoop 读取用户输入并逐轮提交
// prompt 为 true 时输出提示符，用于交互式终端
func runChatLoop(ctx context.Context, store *conversation.Store, in io.Reader, out io.Writer, prompt bool) error {
	if store.Len() == 0 {
		fmt.Fprintln(out, emptyHint)
	}
	if prompt {
		fmt.Fprintln(out, "(輸入 /help 查看可用命令)")
	}

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			if prompt {
				fmt.Fprintln(out)
			}
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case cmdExit, cmdQuit:
			return nil
		case cmdHistory:
			printHistory(out, store.Messages())
			continue
		case cmdHelp:
			fmt.Fprintln(out, "/history  查看對話記錄")
			fmt.Fprintln(out, "/exit     退出")
			continue
		}

		if prompt && line != "" {
			fmt.Fprintln(out, thinkingHint)
		}
		reply, err := store.Submit(ctx, line)
		if err != nil {
			if errors.Is(err, conversation.ErrEmptyInput) {
				continue
			}
			return err
		}
		log.Debug().Int("turns", store.Len()).Msg("reply received")
		fmt.Fprintf(out, "助手: %s\n", reply.Content)
	}
}

func printHistory(out io.Writer, messages []model.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(out, "(暫無對話)")
		return
	}
	for _, m := range messages {
		fmt.Fprintf(out, "%s: %s\n", roleLabel(m.Role), m.Content)
	}
}

func roleLabel(r model.Role) string {
	switch r {
	case model.RoleUser:
		return "你"
	case model.RoleAssistant:
		return "助手"
	default:
		return string(r)
	}
}

// isTerminal 判断输入是否为交互式终端
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
