package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/easel-labs/easel/pkg/service/llm"
)

// Backend holds CLI flags for the model backend endpoint
type Backend struct {
	baseURL string
	model   string
}

// Flags returns CLI flags for backend configuration
func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Base URL of the model backend (required)",
			Required:    true,
			Sources:     cli.EnvVars("EASEL_BACKEND_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "backend-model",
			Usage:       "Default model name sent when a request has none",
			Sources:     cli.EnvVars("EASEL_BACKEND_MODEL"),
			Destination: &x.model,
		},
	}
}

// Configure builds the backend client
func (x *Backend) Configure() (*llm.Client, error) {
	client, err := llm.New(x.baseURL, llm.WithModel(x.model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure backend client")
	}
	return client, nil
}
