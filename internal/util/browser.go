package util

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// launcher 打开 URL 的一种方式
type launcher struct {
	name string
	args []string
}

// startCommand 启动外部命令，不等待退出
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// launchersFor 按优先级排列的打开方式
func launchersFor(goos, url string) []launcher {
	switch goos {
	case "windows":
		// rundll32 比 cmd /c start 稳定，explorer 兜底
		return []launcher{
			{name: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "explorer", args: []string{url}},
		}
	case "darwin":
		return []launcher{{name: "open", args: []string{url}}}
	default:
		out := []launcher{{name: "xdg-open", args: []string{url}}}
		for _, b := range []string{"sensible-browser", "google-chrome", "firefox", "chromium-browser"} {
			out = append(out, launcher{name: b, args: []string{url}})
		}
		return out
	}
}

// OpenBrowser 用默认浏览器打开 url，依次尝试直到成功
func OpenBrowser(url string) error {
	var errs []error
	for _, l := range launchersFor(runtime.GOOS, url) {
		err := startCommand(l.name, l.args...)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
	}
	return fmt.Errorf("failed to open browser: %w", errors.Join(errs...))
}
