package cmd

import (
	"fmt"
	"os"
	"os/exec"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:          "stop",
	Short:        "Stop the server",
	RunE:         stopCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(stopCmd)
}

func stopCmdF(cmd *cobra.Command, args []string) error {
	_, dir := getAppDir()

	// 关闭服务器
	file := fmt.Sprintf("%s/%s", dir, "rl.lock")
	pid, _ := os.ReadFile(file)
	command := exec.Command("kill", string(pid))
	command.Start()
	log.Infof("Server stop, [PID] %s", string(pid))

	return nil
}
