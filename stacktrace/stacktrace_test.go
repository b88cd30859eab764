// Copyright 2025 Rocket Tycoon
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJavaBasicStacktrace(t *testing.T) {
	trace := "\njava.lang.NullPointerException: null\n" +
		"    at com.va.gov.UserService.getUser(UserService.java:42)\n" +
		"    at com.va.gov.Controller.show(Controller.java:15)\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 2)
	assert.Equal(t, LangJava, result.DetectedLanguage)
	assert.Equal(t, "com.va.gov.UserService.getUser", result.Frames[0].Symbol)
	assert.Equal(t, "UserService.java", result.Frames[0].File)
	assert.Equal(t, 42, result.Frames[0].Line)
	assert.True(t, result.Frames[0].IsUserCode)
}

func TestJavaFrameworkDetection(t *testing.T) {
	trace := "\n" +
		"    at org.springframework.web.servlet.DispatcherServlet.doDispatch(DispatcherServlet.java:1067)\n" +
		"    at javax.servlet.http.HttpServlet.service(HttpServlet.java:750)\n" +
		"    at com.va.gov.MyHandler.handle(MyHandler.java:25)\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 3)
	assert.False(t, result.Frames[0].IsUserCode)
	assert.False(t, result.Frames[1].IsUserCode)
	assert.True(t, result.Frames[2].IsUserCode)
}

func TestJavaNativeMethod(t *testing.T) {
	result := Parse("    at sun.reflect.NativeMethodAccessorImpl.invoke0(Native Method)")
	require.Len(t, result.Frames, 1)
	assert.Equal(t, "", result.Frames[0].File)
	assert.False(t, result.Frames[0].HasLine)
}

func TestRubyBasicStacktrace(t *testing.T) {
	trace := "\n/app/services/user_service.rb:42:in `get_user'\n" +
		"/app/controllers/users_controller.rb:15:in `show'\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 2)
	assert.Equal(t, LangRuby, result.DetectedLanguage)
	assert.Equal(t, "get_user", result.Frames[0].Symbol)
	assert.Equal(t, "/app/services/user_service.rb", result.Frames[0].File)
	assert.Equal(t, 42, result.Frames[0].Line)
}

func TestRubyWithFromPrefix(t *testing.T) {
	result := Parse("from /app/models/user.rb:10:in `validate'")
	require.Len(t, result.Frames, 1)
	assert.Equal(t, "validate", result.Frames[0].Symbol)
}

func TestPythonBasicStacktrace(t *testing.T) {
	trace := "\nTraceback (most recent call last):\n" +
		"  File \"/app/services/user_service.py\", line 42, in get_user\n" +
		"  File \"/app/views.py\", line 15, in show\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 2)
	assert.Equal(t, LangPython, result.DetectedLanguage)
	assert.Equal(t, "get_user", result.Frames[0].Symbol)
	assert.Equal(t, "/app/services/user_service.py", result.Frames[0].File)
	assert.Equal(t, 42, result.Frames[0].Line)
}

func TestJavaScriptBasicStacktrace(t *testing.T) {
	trace := "\nError: Something went wrong\n" +
		"    at UserService.getUser (/app/services/userService.js:42:15)\n" +
		"    at Controller.show (/app/controllers/userController.js:15:10)\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 2)
	assert.Equal(t, LangJavaScript, result.DetectedLanguage)
	assert.Equal(t, "UserService.getUser", result.Frames[0].Symbol)
	assert.Equal(t, "/app/services/userService.js", result.Frames[0].File)
	assert.Equal(t, 42, result.Frames[0].Line)
	assert.Equal(t, 15, result.Frames[0].Column)
}

func TestJavaScriptAnonymous(t *testing.T) {
	result := Parse("    at /app/index.js:10:5")
	require.Len(t, result.Frames, 1)
	assert.Equal(t, "<anonymous>", result.Frames[0].Symbol)
	assert.Equal(t, 10, result.Frames[0].Line)
}

func TestRustBasicStacktrace(t *testing.T) {
	trace := "\nthread 'main' panicked at 'called `Result::unwrap()` on an `Err` value'\n" +
		"   0: my_app::handlers::user::get_user\n" +
		"   1: my_app::main\n" +
		"             at ./src/main.rs:42:5\n"
	result := Parse(trace)

	assert.GreaterOrEqual(t, len(result.Frames), 2)
	assert.Equal(t, LangRust, result.DetectedLanguage)
	assert.Equal(t, "my_app::handlers::user::get_user", result.Frames[0].Symbol)
	assert.True(t, result.Frames[0].IsUserCode)
}

func TestRustFrameworkDetection(t *testing.T) {
	trace := "\n" +
		"   0: std::panicking::begin_panic\n" +
		"   1: core::result::unwrap_failed\n" +
		"   2: tokio::runtime::scheduler::current_thread::Context::run\n" +
		"   3: my_app::process_request\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 4)
	assert.False(t, result.Frames[0].IsUserCode)
	assert.False(t, result.Frames[1].IsUserCode)
	assert.False(t, result.Frames[2].IsUserCode)
	assert.True(t, result.Frames[3].IsUserCode)
}

func TestGoBasicStacktrace(t *testing.T) {
	trace := "\ngoroutine 1 [running]:\n" +
		"main.handler(0x1234)\n" +
		"        /app/handler.go:42 +0x1a\n" +
		"main.main()\n" +
		"        /app/main.go:15 +0x2b\n"
	result := Parse(trace)

	assert.GreaterOrEqual(t, len(result.Frames), 2)
	assert.Equal(t, LangGo, result.DetectedLanguage)
}

func TestGoFrameworkDetection(t *testing.T) {
	trace := "\n" +
		"runtime.gopanic(0x123)\n" +
		"        /usr/local/go/src/runtime/panic.go:1038 +0x215\n" +
		"net/http.HandlerFunc.ServeHTTP(0x456)\n" +
		"        /usr/local/go/src/net/http/server.go:2012 +0x44\n" +
		"main.myHandler(0x789)\n" +
		"        /app/handler.go:25 +0x1a\n"
	result := Parse(trace)

	var functions []Frame
	for _, f := range result.Frames {
		if f.Symbol != "<location>" {
			functions = append(functions, f)
		}
	}
	require.Len(t, functions, 3)
	assert.False(t, functions[0].IsUserCode)
	assert.False(t, functions[1].IsUserCode)
	assert.True(t, functions[2].IsUserCode)
}

func TestEmptyInput(t *testing.T) {
	result := Parse("")
	assert.Empty(t, result.Frames)
	assert.Equal(t, Language(""), result.DetectedLanguage)
}

func TestOnlyExceptionHeader(t *testing.T) {
	result := Parse("java.lang.NullPointerException: null")
	assert.Empty(t, result.Frames)
}

func TestMixedGarbage(t *testing.T) {
	trace := "\nSome random text\n" +
		"    at com.va.gov.Service.method(Service.java:10)\n" +
		"More random text\n"
	result := Parse(trace)

	require.Len(t, result.Frames, 1)
	assert.Len(t, result.UnparsedLines, 2)
}
