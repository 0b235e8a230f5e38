package exec

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/toolgate/toolgate/model/types"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// Name is the registered tool name. The static policy table tiers it
// RequiresApproval: shell commands always need a human decision.
const Name = "system_exec"

// Args are the tool arguments.
type Args struct {
	Commands  []string          `json:"commands"`
	Directory string            `json:"directory,omitempty"`
	Host      string            `json:"host,omitempty"`    // empty runs locally
	Secrets   string            `json:"secrets,omitempty"` // credential name for SSH hosts
	Env       map[string]string `json:"env,omitempty"`
	TimeoutMs int               `json:"timeoutMs,omitempty"`
}

// Command captures one executed command.
type Command struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Status int    `json:"status"`
}

// Result is the tool output.
type Result struct {
	Commands []*Command `json:"commands"`
	Stdout   string     `json:"stdout,omitempty"`
	Status   int        `json:"status"`
}

type sessionInfo struct {
	service *gosh.Service
}

// Tool executes terminal commands on the local host or over SSH.
type Tool struct {
	sessions map[string]*sessionInfo
	mux      sync.Mutex
}

// New creates the exec tool.
func New() *Tool {
	return &Tool{sessions: make(map[string]*sessionInfo)}
}

// Definition describes the tool.
func (t *Tool) Definition() types.Definition {
	return types.Definition{
		Name:        Name,
		Description: "Executes terminal commands on the target system.",
		Args:        reflect.TypeOf(&Args{}),
	}
}

// Execute runs the requested commands sequentially, stopping at the first
// non-zero exit status.
func (t *Tool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &Args{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	if len(args.Commands) == 0 {
		return nil, fmt.Errorf("commands cannot be empty")
	}

	session, err := t.getSession(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if args.Directory != "" {
		if _, _, err := session.service.Run(ctx, fmt.Sprintf("cd %s", args.Directory)); err != nil {
			return nil, fmt.Errorf("failed to change directory: %w", err)
		}
	}

	timeout := time.Duration(args.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}

	result := &Result{}
	var combined strings.Builder
	for _, cmd := range args.Commands {
		stdout, status, err := session.service.Run(ctx, cmd, runner.WithTimeout(int(timeout.Milliseconds())))
		command := &Command{Input: cmd, Output: stdout, Status: status}
		if err != nil && status == 0 {
			command.Status = -1
		}
		result.Commands = append(result.Commands, command)
		if stdout != "" {
			combined.WriteString(stdout)
			combined.WriteString("\n")
		}
		result.Status = command.Status
		if command.Status != 0 {
			break
		}
	}
	result.Stdout = strings.TrimSpace(combined.String())
	return result, nil
}

func (t *Tool) getSession(ctx context.Context, args *Args) (*sessionInfo, error) {
	key := args.Host
	if key == "" {
		key = "localhost"
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	if session, ok := t.sessions[key]; ok {
		return session, nil
	}

	var envOptions []runner.Option
	if len(args.Env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(args.Env))
	}

	var service *gosh.Service
	var err error
	if key == "localhost" {
		service, err = gosh.New(ctx, local.New(envOptions...))
	} else {
		config, cErr := t.sshConfig(ctx, args)
		if cErr != nil {
			return nil, cErr
		}
		host := key
		if !strings.Contains(host, ":") {
			host += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(host, config, envOptions...))
	}
	if err != nil {
		return nil, err
	}
	session := &sessionInfo{service: service}
	t.sessions[key] = session
	return session, nil
}

func (t *Tool) sshConfig(ctx context.Context, args *Args) (*ssh.ClientConfig, error) {
	credentials := args.Secrets
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve SSH credentials: %w", err)
	}
	return generic.SSH.Config(ctx)
}

// Close releases all sessions held by this tool.
func (t *Tool) Close() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	var lastErr error
	for key, session := range t.sessions {
		if err := session.service.Close(); err != nil {
			lastErr = err
		}
		delete(t.sessions, key)
	}
	return lastErr
}

var _ types.Tool = (*Tool)(nil)
