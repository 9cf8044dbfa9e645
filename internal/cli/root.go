// Package cli 实现命令行客户端
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yuimhosin/datadashboard/internal/client"
)

// app 命令共享的运行时状态
type app struct {
	v        *viper.Viper
	settings *Settings
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
}

// client 创建指向当前服务器的 API 客户端
func (a *app) client() *client.Client {
	return client.NewClient(a.settings.Server.URL)
}

// NewRootCommand 创建根命令及所有子命令
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "數據戰略儀表盤命令行客户端",
		Long: `數據戰略儀表盤命令行客户端

查看全球公共數據源、數據出境合規路徑，或與研究助手對話。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	// 全局参数
	root.PersistentFlags().StringP("server", "s", "", "服务器地址 (默认: "+defaultServerURL+")")
	root.PersistentFlags().BoolP("verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newChatCommand(a),
		newSourcesCommand(a),
		newComplianceCommand(a),
		newStatusCommand(a),
	)
	return root
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlag("server.url", cmd.Flags().Lookup("server")); err != nil {
		return err
	}

	settings, err := loadSettings(a.v)
	if err != nil {
		return err
	}
	// 未显式指定 --server 时 BindPFlag 返回配置文件中的值
	a.settings = settings

	level, err := zerolog.ParseLevel(settings.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()

	log.Debug().Str("server", settings.Server.URL).Msg("cli initialized")
	return nil
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
