package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hireview/hireview/internal/ai"
	"github.com/hireview/hireview/internal/ai/gemini"
	"github.com/hireview/hireview/internal/hrbackend"
	"github.com/hireview/hireview/internal/listview"
	"github.com/hireview/hireview/internal/logger"
	"github.com/hireview/hireview/internal/reconciler"
	"github.com/hireview/hireview/internal/secrets"
	"github.com/hireview/hireview/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSearch      = "Search candidates"
	PromptFilter      = "Change status filter"
	PromptRefreshList = "Refresh list"
	PromptLogout      = "Logout"
	PromptQuit        = "Quit"

	PromptAsk               = "Ask a question"
	PromptApprove           = "Approve"
	PromptReject            = "Reject"
	PromptMarkPending       = "Mark pending"
	PromptShowEnrichment    = "Show enrichment data"
	PromptShowHistory       = "Show question history"
	PromptRefreshEnrichment = "Refresh enrichment data"
	PromptBack              = "Back to list"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive candidate review console",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("backend-url", "b", "", "base URL of the HR backend. Default is http://localhost:5000.")

	viper.BindPFlag("backend-url", runCmd.Flags().Lookup("backend-url"))
}

type shellDeps struct {
	client   *hrbackend.Client
	guard    *session.Guard
	list     *listview.View
	answerer ai.Answerer
	config   *Config
	logger   *zap.Logger
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting hireview", zap.String("version", version))

	guard := session.New(tokenFilePath(config), zlog)
	client := hrbackend.New(ctx, zlog, guard)
	if config.BackendURL != "" {
		client.APIURL = strings.TrimRight(config.BackendURL, "/")
	}

	answerer, err := buildAnswerer(ctx, config, client, zlog)
	if err != nil {
		zlog.Fatal("building answer provider", zap.Error(err))
	}

	deps := &shellDeps{
		client:   client,
		guard:    guard,
		list:     listview.New(ctx, client, zlog, listview.DefaultDebounce),
		answerer: answerer,
		config:   config,
		logger:   zlog,
	}

	if err := shell(ctx, deps); err != nil && !errors.Is(err, errExit) {
		zlog.Fatal("exiting", zap.Error(err))
	}
}

// shell is the top-level view state machine: login, list, detail.
func shell(ctx context.Context, deps *shellDeps) error {
	for {
		if !deps.guard.IsAuthenticated() {
			if err := loginView(deps); err != nil {
				return err
			}
			continue
		}

		id, err := listViewLoop(deps)
		if err != nil {
			return err
		}
		if id == "" {
			// Logged out; the candidate selection is dropped with the session.
			continue
		}

		if err := detailView(ctx, deps, id); err != nil {
			return err
		}
	}
}

func loginView(deps *shellDeps) error {
	for {
		emailPrompt := promptui.Prompt{Label: "Email", Default: deps.config.Email, AllowEdit: true}
		email, err := emailPrompt.Run()
		if err != nil {
			return exitOn(err)
		}

		passwordPrompt := promptui.Prompt{Label: "Password", Mask: '*'}
		password, err := passwordPrompt.Run()
		if err != nil {
			return exitOn(err)
		}

		token, err := deps.client.Login(strings.TrimSpace(email), password)
		if err != nil {
			fmt.Printf("Login failed: %s\n", err)
			deps.logger.Warn("login rejected", zap.Error(err))
			continue
		}

		if err := deps.guard.Login(token); err != nil {
			return err
		}

		deps.logger.Info("logged in", zap.String("email", strings.TrimSpace(email)))
		return nil
	}
}

// listViewLoop returns the selected candidate id, or "" after a logout.
func listViewLoop(deps *shellDeps) (string, error) {
	deps.list.Refresh()

	for {
		snap := deps.list.Wait()
		renderList(snap)

		items := []string{PromptSearch, PromptFilter, PromptRefreshList}
		for _, candidate := range snap.Candidates {
			items = append(items, candidateLabel(candidate))
		}
		items = append(items, PromptLogout, PromptQuit)

		prompt := promptui.Select{Label: "Candidates", Items: items, Size: 12}
		_, selected, err := prompt.Run()
		if err != nil {
			return "", exitOn(err)
		}

		switch selected {
		case PromptSearch:
			searchPrompt := promptui.Prompt{Label: "Search (name, email, or id)", Default: snap.Query, AllowEdit: true}
			text, err := searchPrompt.Run()
			if err != nil {
				return "", exitOn(err)
			}
			deps.list.SetQuery(strings.TrimSpace(text))
		case PromptFilter:
			filterPrompt := promptui.Select{
				Label: "Status filter",
				Items: []string{
					string(hrbackend.FilterAll),
					string(hrbackend.FilterPending),
					string(hrbackend.FilterApproved),
					string(hrbackend.FilterRejected),
				},
			}
			_, choice, err := filterPrompt.Run()
			if err != nil {
				return "", exitOn(err)
			}
			deps.list.SetFilter(hrbackend.StatusFilter(choice))
		case PromptRefreshList:
			deps.list.Refresh()
		case PromptLogout:
			deps.guard.Logout()
			deps.logger.Info("logged out")
			return "", nil
		case PromptQuit:
			return "", errExit
		default:
			return strings.Split(selected, " ")[0], nil
		}
	}
}

func detailView(ctx context.Context, deps *shellDeps, id string) error {
	candidate, err := deps.client.GetCandidate(id)
	if err != nil {
		var apiErr *hrbackend.APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			deps.logger.Warn("session rejected by backend", zap.Error(err))
			deps.guard.Logout()
			return nil
		}

		fmt.Printf("Could not fetch candidate: %s\n", err)
		return nil
	}

	rec := reconciler.New(candidate, deps.client, deps.answerer,
		logger.WithCandidate(deps.logger, candidate.Ref()))

	fmt.Println("Fetching profile enrichment...")
	rec.FetchEnrichment()

	for {
		state := rec.State()
		renderDetail(state)

		var items []string
		if state.Candidate.CanAsk() {
			items = append(items, PromptAsk)
		}
		items = append(items,
			PromptApprove, PromptReject, PromptMarkPending,
			PromptShowEnrichment, PromptShowHistory, PromptRefreshEnrichment,
			PromptBack,
		)

		prompt := promptui.Select{Label: state.Candidate.FullName, Items: items, Size: 10}
		_, action, err := prompt.Run()
		if err != nil {
			return exitOn(err)
		}

		switch action {
		case PromptAsk:
			if err := askQuestion(ctx, rec); err != nil {
				return err
			}
		case PromptApprove:
			updateStatus(rec, hrbackend.StatusApproved)
		case PromptReject:
			updateStatus(rec, hrbackend.StatusRejected)
		case PromptMarkPending:
			updateStatus(rec, hrbackend.StatusPending)
		case PromptShowEnrichment:
			renderBundle(rec.State().Bundle)
		case PromptShowHistory:
			renderHistory(rec.State().History)
		case PromptRefreshEnrichment:
			fmt.Println("Refreshing profile enrichment...")
			rec.FetchEnrichment()
		case PromptBack:
			return nil
		}
	}
}

func askQuestion(ctx context.Context, rec *reconciler.Reconciler) error {
	prompt := promptui.Prompt{Label: "Question", Default: rec.State().Question, AllowEdit: true}
	text, err := prompt.Run()
	if err != nil {
		return exitOn(err)
	}

	rec.SetQuestion(text)

	fmt.Println("Generating answer...")
	answer, err := rec.Ask(ctx)
	if err != nil {
		// Shown inline near the control; the draft is kept for a retry.
		fmt.Printf("! %s\n", err)
		return nil
	}

	renderAnswer(answer)
	return nil
}

func updateStatus(rec *reconciler.Reconciler, status hrbackend.Status) {
	if err := rec.SetStatus(status); err != nil {
		fmt.Printf("! could not update status: %s\n", err)
		return
	}

	fmt.Printf("Status: %s\n", rec.State().Status)
}

func buildAnswerer(ctx context.Context, config *Config, client *hrbackend.Client, zlog *zap.Logger) (ai.Answerer, error) {
	if config.AI == nil {
		return ai.NewBackend(client), nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	switch provider {
	case "", "backend":
		return ai.NewBackend(client), nil
	case "gemini":
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	if config.AI.Gemini == nil {
		return nil, errors.New("gemini configuration is required when the gemini provider is selected")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithProvider(zlog, provider, config.AI.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnswerer(generator, genLogger, config.AI.Gemini.MaxLogLength), nil
}

func exitOn(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}
