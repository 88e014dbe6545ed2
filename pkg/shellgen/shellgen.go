// Package shellgen emits the shell integration script: directory-change
// hooks, the PATH-precedence helper, and activation/deactivation logic.
// The generated text is the external contract consumed by interactive
// shells; the variable names in it are load-bearing.
package shellgen

import "strings"

// Params configures script generation. Runtime env vars always win over the
// generated defaults, so a user can flip messages or verbosity without
// regenerating their shell init.
type Params struct {
	// Command is how the script invokes the launchpad binary.
	Command string
	// ShowMessages is the default for LAUNCHPAD_SHOW_ENV_MESSAGES.
	ShowMessages bool
	// ActivationMessage and DeactivationMessage are templates with a {path}
	// placeholder substituted with the project directory's base name.
	ActivationMessage   string
	DeactivationMessage string
	// Verbose is the default for LAUNCHPAD_VERBOSE.
	Verbose bool
}

func (p Params) withDefaults() Params {
	if p.Command == "" {
		p.Command = "launchpad"
	}
	if p.ActivationMessage == "" {
		p.ActivationMessage = "✅ Environment activated for {path}"
	}
	if p.DeactivationMessage == "" {
		p.DeactivationMessage = "Environment deactivated"
	}
	return p
}

func boolWord(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (p Params) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"@CMD@", p.Command,
		"@SHOW_MESSAGES@", boolWord(p.ShowMessages),
		"@ACTIVATION_MESSAGE@", p.ActivationMessage,
		"@DEACTIVATION_MESSAGE@", p.DeactivationMessage,
		"@VERBOSE@", boolWord(p.Verbose),
	)
}

// Generate returns the integration script for bash and zsh. zsh registers
// event-based chpwd/precmd hooks; bash falls back to a prompt-based hook via
// PROMPT_COMMAND.
func Generate(p Params) string {
	return p.withDefaults().replacer().Replace(posixScript)
}

// GenerateFish returns the integration script for fish, which hooks the PWD
// variable change event.
func GenerateFish(p Params) string {
	return p.withDefaults().replacer().Replace(fishScript)
}

const posixScript = `# launchpad shell integration for bash and zsh.
# Install with: eval "$(launchpad shellcode)"

# Capture the pristine PATH exactly once per shell session, before any
# environment is ever injected. This is the only value full deactivation
# restores from.
if [ -z "${LAUNCHPAD_ORIGINAL_PATH:-}" ]; then
    export LAUNCHPAD_ORIGINAL_PATH="$PATH"
fi

__launchpad_msg() {
    if [ "${LAUNCHPAD_SHOW_ENV_MESSAGES:-@SHOW_MESSAGES@}" = "false" ]; then
        return 0
    fi
    local msg="$1"
    msg="${msg//\{path\}/$2}"
    printf '%s\n' "$msg" >&2
}

# Remove one segment from PATH by exact match, never by position.
__launchpad_remove_segment() {
    local out="" seg rest="$PATH:"
    while [ -n "$rest" ]; do
        seg="${rest%%:*}"
        rest="${rest#*:}"
        if [ -n "$seg" ] && [ "$seg" != "$1" ]; then
            out="${out:+$out:}$seg"
        fi
    done
    PATH="$out"
    export PATH
}

# The segments that must sit at the front of PATH, highest precedence first:
# env bin, project-local bins, global bins.
__launchpad_front_segments() {
    local front="" d
    if [ -n "${LAUNCHPAD_ENV_BIN_PATH:-}" ]; then
        front="$LAUNCHPAD_ENV_BIN_PATH"
    fi
    if [ -n "${LAUNCHPAD_CURRENT_PROJECT:-}" ]; then
        for d in "$LAUNCHPAD_CURRENT_PROJECT/bin" "$LAUNCHPAD_CURRENT_PROJECT/node_modules/.bin"; do
            if [ -d "$d" ]; then
                front="${front:+$front:}$d"
            fi
        done
        for d in "$HOME/.local/bin"; do
            if [ -d "$d" ]; then
                front="${front:+$front:}$d"
            fi
        done
    fi
    printf '%s' "$front"
}

# Idempotent precedence helper: rebuilds PATH as
#   env bin : project-local bin : global bin : external additions : original
# Invoked after every activation path and again on every prompt, so anything
# an external tool prepends mid-session is corrected.
__launchpad_update_path() {
    local front extras="" orig="" seg rest
    front="$(__launchpad_front_segments)"
    rest="$PATH:"
    while [ -n "$rest" ]; do
        seg="${rest%%:*}"
        rest="${rest#*:}"
        [ -z "$seg" ] && continue
        case ":$front:" in *":$seg:"*) continue ;; esac
        case ":$LAUNCHPAD_ORIGINAL_PATH:" in *":$seg:"*) continue ;; esac
        extras="${extras:+$extras:}$seg"
    done
    rest="$LAUNCHPAD_ORIGINAL_PATH:"
    while [ -n "$rest" ]; do
        seg="${rest%%:*}"
        rest="${rest#*:}"
        [ -z "$seg" ] && continue
        case ":$front:" in *":$seg:"*) continue ;; esac
        orig="${orig:+$orig:}$seg"
    done
    PATH="${front:+$front:}${extras:+$extras:}$orig"
    export PATH
}

__launchpad_deactivate() {
    if [ -z "${LAUNCHPAD_CURRENT_PROJECT:-}" ]; then
        return 0
    fi
    local base="${LAUNCHPAD_CURRENT_PROJECT##*/}"
    # Compute the injected segments while the project variables are still
    # set, then remove every one of them by exact match. Anything left in
    # PATH afterwards is a genuine external addition and survives.
    local front seg rest
    front="$(__launchpad_front_segments)"
    rest="$front:"
    while [ -n "$rest" ]; do
        seg="${rest%%:*}"
        rest="${rest#*:}"
        [ -n "$seg" ] && __launchpad_remove_segment "$seg"
    done
    unset LAUNCHPAD_ENV_BIN_PATH
    unset LAUNCHPAD_CURRENT_PROJECT
    __launchpad_update_path
    __launchpad_msg "${LAUNCHPAD_SHELL_DEACTIVATION_MESSAGE:-@DEACTIVATION_MESSAGE@}" "$base"
}

__launchpad_activate() {
    local dir="$1" out=""
    local __launchpad_env_bin="" __launchpad_ready=""
    if [ "${LAUNCHPAD_VERBOSE:-@VERBOSE@}" = "true" ]; then
        out="$(@CMD@ activate --shell --verbose "$dir")" || out=""
    else
        out="$(@CMD@ activate --shell "$dir")" || out=""
    fi
    if [ -n "$out" ]; then
        eval "$out"
    fi
    export LAUNCHPAD_CURRENT_PROJECT="$dir"
    if [ -n "$__launchpad_env_bin" ]; then
        export LAUNCHPAD_ENV_BIN_PATH="$__launchpad_env_bin"
    else
        unset LAUNCHPAD_ENV_BIN_PATH
    fi
    # Applied on the cached fast path, the fresh install path, and the
    # failure fallback alike: even a failed setup leaves a usable PATH.
    __launchpad_update_path
    if [ -n "$__launchpad_env_bin" ]; then
        __launchpad_msg "${LAUNCHPAD_SHELL_ACTIVATION_MESSAGE:-@ACTIVATION_MESSAGE@}" "${dir##*/}"
    fi
}

__launchpad_find_project() {
    local dir="$PWD"
    while [ -n "$dir" ] && [ "$dir" != "/" ]; do
        if [ -f "$dir/deps.toml" ] || [ -f "$dir/dependencies.toml" ] || [ -f "$dir/launchpad.toml" ]; then
            printf '%s\n' "$dir"
            return 0
        fi
        dir="${dir%/*}"
    done
    return 1
}

__launchpad_chpwd() {
    local proj=""
    proj="$(__launchpad_find_project)" || proj=""
    if [ "$proj" = "${LAUNCHPAD_CURRENT_PROJECT:-}" ]; then
        __launchpad_update_path
        return 0
    fi
    __launchpad_deactivate
    if [ -n "$proj" ]; then
        __launchpad_activate "$proj"
    else
        __launchpad_update_path
    fi
}

if [ -n "${ZSH_VERSION:-}" ]; then
    autoload -Uz add-zsh-hook
    add-zsh-hook chpwd __launchpad_chpwd
    add-zsh-hook precmd __launchpad_update_path
    __launchpad_chpwd
elif [ -n "${BASH_VERSION:-}" ]; then
    __launchpad_prompt() {
        if [ "$PWD" != "${__launchpad_last_pwd:-}" ]; then
            __launchpad_last_pwd="$PWD"
            __launchpad_chpwd
        else
            __launchpad_update_path
        fi
    }
    case ";${PROMPT_COMMAND:-};" in
        *";__launchpad_prompt;"*) ;;
        *) PROMPT_COMMAND="__launchpad_prompt${PROMPT_COMMAND:+;$PROMPT_COMMAND}" ;;
    esac
    __launchpad_prompt
fi
`

const fishScript = `# launchpad shell integration for fish.
# Install with: launchpad shellcode --fish | source

if not set -q LAUNCHPAD_ORIGINAL_PATH
    set -gx LAUNCHPAD_ORIGINAL_PATH (string join : $PATH)
end

function __launchpad_msg
    set -l show "@SHOW_MESSAGES@"
    if set -q LAUNCHPAD_SHOW_ENV_MESSAGES
        set show $LAUNCHPAD_SHOW_ENV_MESSAGES
    end
    if test "$show" = "false"
        return 0
    end
    echo (string replace --all '{path}' $argv[2] $argv[1]) >&2
end

function __launchpad_front_segments
    set -l front
    if set -q LAUNCHPAD_ENV_BIN_PATH
        set -a front $LAUNCHPAD_ENV_BIN_PATH
    end
    if set -q LAUNCHPAD_CURRENT_PROJECT
        for d in "$LAUNCHPAD_CURRENT_PROJECT/bin" "$LAUNCHPAD_CURRENT_PROJECT/node_modules/.bin" "$HOME/.local/bin"
            if test -d $d
                set -a front $d
            end
        end
    end
    string join \n $front
end

function __launchpad_update_path
    set -l front (__launchpad_front_segments)
    set -l orig (string split : $LAUNCHPAD_ORIGINAL_PATH)
    set -l extras
    for seg in $PATH
        if contains -- $seg $front; or contains -- $seg $orig
            continue
        end
        set -a extras $seg
    end
    set -l tail
    for seg in $orig
        if contains -- $seg $front
            continue
        end
        set -a tail $seg
    end
    set -gx PATH $front $extras $tail
end

function __launchpad_deactivate
    if not set -q LAUNCHPAD_CURRENT_PROJECT
        return 0
    end
    set -l base (basename $LAUNCHPAD_CURRENT_PROJECT)
    # Capture the injected segments before the project variables go away,
    # then drop exactly those from PATH. External additions survive.
    set -l injected (__launchpad_front_segments)
    set -e LAUNCHPAD_ENV_BIN_PATH
    set -e LAUNCHPAD_CURRENT_PROJECT
    set -l cleaned
    for seg in $PATH
        if contains -- $seg $injected
            continue
        end
        set -a cleaned $seg
    end
    set -gx PATH $cleaned
    __launchpad_update_path
    set -l msg "@DEACTIVATION_MESSAGE@"
    if set -q LAUNCHPAD_SHELL_DEACTIVATION_MESSAGE
        set msg $LAUNCHPAD_SHELL_DEACTIVATION_MESSAGE
    end
    __launchpad_msg $msg $base
end

function __launchpad_activate
    set -l dir $argv[1]
    set -l __launchpad_env_bin ""
    set -l __launchpad_ready ""
    for line in (@CMD@ activate --shell $dir)
        if string match -q '__launchpad_env_bin=*' $line
            set __launchpad_env_bin (string trim -c \' (string replace '__launchpad_env_bin=' '' $line))
        else if string match -q '__launchpad_ready=*' $line
            set __launchpad_ready (string replace '__launchpad_ready=' '' $line)
        end
    end
    set -gx LAUNCHPAD_CURRENT_PROJECT $dir
    if test -n "$__launchpad_env_bin"
        set -gx LAUNCHPAD_ENV_BIN_PATH $__launchpad_env_bin
    else
        set -e LAUNCHPAD_ENV_BIN_PATH
    end
    __launchpad_update_path
    if test -n "$__launchpad_env_bin"
        set -l msg "@ACTIVATION_MESSAGE@"
        if set -q LAUNCHPAD_SHELL_ACTIVATION_MESSAGE
            set msg $LAUNCHPAD_SHELL_ACTIVATION_MESSAGE
        end
        __launchpad_msg $msg (basename $dir)
    end
end

function __launchpad_find_project
    set -l dir $PWD
    while test -n "$dir"; and test "$dir" != "/"
        for f in deps.toml dependencies.toml launchpad.toml
            if test -f "$dir/$f"
                echo $dir
                return 0
            end
        end
        set dir (string replace -r '/[^/]*$' '' $dir)
    end
    return 1
end

function __launchpad_chpwd --on-variable PWD
    set -l proj (__launchpad_find_project)
    if test "$proj" = "$LAUNCHPAD_CURRENT_PROJECT"
        __launchpad_update_path
        return 0
    end
    __launchpad_deactivate
    if test -n "$proj"
        __launchpad_activate $proj
    else
        __launchpad_update_path
    end
end

__launchpad_chpwd
`
