package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/factory"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/spf13/cobra"
)

// APIKeyEnv 未传 --api-key 时读取的环境变量
const APIKeyEnv = "RAVEN_AI_API_KEY"

type providerFlags struct {
	provider     string
	apiKey       string
	apiURL       string
	organization string
	project      string
	endpoint     string
	apiVersion   string
	deployment   string
	timeout      time.Duration
}

func (f *providerFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.provider, "provider", string(types.ProviderOpenAI), `provider: "OpenAI", "Azure AI" or "Local LLM"`)
	flags.StringVar(&f.apiKey, "api-key", "", "API key (defaults to $"+APIKeyEnv+")")
	flags.StringVar(&f.apiURL, "api-url", "", "OpenAI base URL or Local LLM API URL")
	flags.StringVar(&f.organization, "organization", "", "OpenAI organization id")
	flags.StringVar(&f.project, "project", "", "OpenAI project id")
	flags.StringVar(&f.endpoint, "endpoint", "", "Azure OpenAI endpoint")
	flags.StringVar(&f.apiVersion, "api-version", "", "Azure OpenAI API version")
	flags.StringVar(&f.deployment, "deployment", "", "Azure OpenAI deployment name")
	flags.DurationVar(&f.timeout, "timeout", 0, "request timeout (0 uses the provider default)")
}

// client 按命令行参数构造服务商客户端
func (f *providerFlags) client() (types.Client, error) {
	kind, err := types.ParseProviderKind(f.provider)
	if err != nil {
		return nil, err
	}

	apiKey := f.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	req := &biz.TestConfigRequest{
		Provider:       string(kind),
		APIURL:         f.apiURL,
		APIKey:         apiKey,
		Endpoint:       f.endpoint,
		APIVersion:     f.apiVersion,
		DeploymentName: f.deployment,
		Organization:   f.organization,
		Project:        f.project,
	}

	var opts []factory.Option
	if f.timeout > 0 {
		opts = append(opts, factory.WithTimeout(f.timeout), factory.WithLocalTimeout(f.timeout))
	}
	return factory.New(opts...).Build(req.Credentials(kind))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "raven-ai",
		Short:         "raven-ai: probe and inspect LLM provider configurations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newProbeCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newProbeCmd() *cobra.Command {
	var f providerFlags
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Test connectivity and credentials of a provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := f.client()
			var result *types.ProbeResult
			if err != nil {
				result = types.ProbeFailed(err)
			} else {
				result = client.Probe(cmd.Context())
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			return result.Err()
		},
	}
	f.register(cmd)
	return cmd
}

func newModelsCmd() *cobra.Command {
	var (
		f   providerFlags
		all bool
	)
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available to assistants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := f.client()
			if err != nil {
				return err
			}
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			if client.Kind() == types.ProviderOpenAI && !all {
				models = types.FilterCompatibleModels(models, types.DefaultAllowPrefixes, types.DefaultDenySubstrings)
			}
			for _, m := range models {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "do not filter OpenAI models")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the OpenAI SDK version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", biz.OpenAISDKModule, biz.SDKVersionFromBuildInfo())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
