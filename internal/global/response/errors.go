package response

var (
	ErrInvalidRequest  = newError(400, "请求参数错误")
	ErrInvalidPassword = newError(40001, "用户名或密码错误")
	ErrPasswordWeak    = newError(40002, "密码强度不足")
	ErrUnauthorized    = newError(401, "请先登录")
	ErrTokenInvalid    = newError(40101, "登录已失效，请重新登录")
	ErrForbidden       = newError(403, "没有权限")
	ErrNotFound        = newError(404, "资源不存在")
	ErrAlreadyExists   = newError(409, "资源已存在")
	// ErrInvalidTransition 项目当前状态不允许该操作
	ErrInvalidTransition = newError(40901, "当前状态不允许该操作")
	ErrFileTooLarge      = newError(413, "文件过大")
	ErrFileType          = newError(415, "不支持的文件类型")
	ErrServerInternal    = newError(500, "服务器内部错误")
	ErrDatabase          = newError(50001, "数据库错误")
	ErrStorage           = newError(50002, "文件存储错误")
)
