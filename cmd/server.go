package cmd

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	devConfig "github.com/jagaapp/jaga/dev/config"
	"github.com/jagaapp/jaga/server"
	"github.com/jagaapp/jaga/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a jaga server",
	Long:  `The jaga server houses the contact registry, push-token lifecycle & the emergency escalation flow`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	config := viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	if err := config.ReadInConfig(); err != nil {
		log.Panicf("error reading server config file: %v", err)
	}

	return config
}

// devConfigFilePath seeds dev/config/server.yml from the embedded default
// on first run & returns its path.
func devConfigFilePath() string {
	workingDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	configDir := filepath.Join(workingDir, "dev", "config")
	if err := utils.CreateDirIfNotExist(configDir); err != nil {
		log.Panic(err)
	}

	configFilePath := filepath.Join(configDir, "server.yml")
	if !utils.FileExist(configFilePath) {
		if err := ioutil.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600); err != nil {
			log.Panic(err)
		}
	}

	return configFilePath
}
