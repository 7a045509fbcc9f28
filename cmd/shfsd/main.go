// Command shfsd runs a shfs server: it serves one or more configured
// volumes over UDP.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/JMARyA/shfs/pkg/server"
)

const defaultPort = 30

var (
	cfgFile  string
	port     int
	compress bool
)

var rootCmd = &cobra.Command{
	Use:   "shfsd",
	Short: "shfs server daemon",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the volumes named in --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(cfgFile, fmt.Sprintf(":%d", port), compress)
	},
}

func init() {
	serveCmd.Flags().StringVar(&cfgFile, "config", "", "path to the server's JSON volume config")
	serveCmd.Flags().IntVar(&port, "port", defaultPort, "UDP port to listen on")
	serveCmd.Flags().BoolVar(&compress, "compress", true, "zstd-wrap responses when smaller")
	_ = serveCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%+v", err)
		os.Exit(1)
	}
}
