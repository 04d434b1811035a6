package cmd

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"review-ledger/config"
	"review-ledger/core"
)

var daemon bool
var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Start the server",
	RunE:         startCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "run with daemon?")
	RootCmd.RunE = startCmdF
}

func startCmdF(cmd *cobra.Command, args []string) error {
	// 后台启动
	if daemon {
		runDaemon()
	}

	interruptChan := make(chan os.Signal, 1)
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Errorf("Error loading configuration: %v", err.Error())
		return err
	}

	return runServer(cfg, interruptChan)
}

func runDaemon() {
	app, dir := getAppDir()

	// 拿到启动命令并自启动
	bin := fmt.Sprintf("%s/%s", dir, app)
	command := exec.Command(bin, "start")
	command.Start()

	log.Infof("Server start, [PID] %d running...", command.Process.Pid)
	os.WriteFile("rl.lock", []byte(fmt.Sprintf("%d", command.Process.Pid)), 0666)
	daemon = false
	os.Exit(0)
}

func runServer(cfg *config.Config, interruptChan chan os.Signal) error {
	initLogger(cfg.Logger)
	initDebug(cfg.Debugger)

	server := core.NewServer(cfg)
	defer server.Close()

	server.Start()

	// wait for kill signal before attempting to gracefully shutdown
	// the running service
	signal.Notify(interruptChan, syscall.SIGINT, syscall.SIGTERM)
	<-interruptChan

	return nil
}

func initLogger(cfg *config.Logger) {
	// Log as text instead of the default ASCII formatter.
	log.SetFormatter(&log.TextFormatter{})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	if cfg == nil {
		return
	}

	if cfg.Mode != nil && *cfg.Mode == "file" {
		file, err := os.OpenFile(*cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Info("Failed to log to file, using default stdout")
		}
	}

	if cfg.Level != nil {
		log.SetLevel(log.Level(*cfg.Level))
	}
}

func initDebug(cfg *config.Debugger) {
	if cfg != nil && cfg.Enabled != nil && *cfg.Enabled {
		go http.ListenAndServe(*cfg.Listen, nil)
	}
}
