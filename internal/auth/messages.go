package auth

import "errors"

// messages maps provider error codes to the fixed user-facing strings
// shown on the login and register forms. The strings are part of the
// UX contract and must not be reworded.
var messages = map[string]string{
	CodeUserNotFound:    "Email không tồn tại",
	CodeWrongPassword:   "Mật khẩu không đúng",
	CodeInvalidEmail:    "Email không hợp lệ",
	CodeUserDisabled:    "Tài khoản đã bị vô hiệu hóa",
	CodeTooManyRequests: "Quá nhiều lần thử. Vui lòng thử lại sau",
	CodeEmailInUse:      "Email đã được sử dụng",
	CodeWeakPassword:    "Mật khẩu quá yếu. Vui lòng sử dụng mật khẩu mạnh hơn",
	CodeNetworkFailed:   "Lỗi kết nối mạng. Vui lòng kiểm tra kết nối",
}

// LoginMessage renders a sign-in failure for the user.
func LoginMessage(err error) string {
	return messageFor(err, "Đăng nhập thất bại")
}

// RegisterMessage renders a registration failure for the user.
func RegisterMessage(err error) string {
	return messageFor(err, "Đăng ký thất bại")
}

func messageFor(err error, fallback string) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if msg, ok := messages[pe.Code]; ok {
			return msg
		}
		if pe.Message != "" {
			return pe.Message
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
