package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 领域错误类型 ==========

// MalformedIdentityError 身份声明不合法（actor-kind与租户ID不一致等）
// 该错误对请求是致命的，不允许重试
type MalformedIdentityError struct {
	Reason string
}

func (e *MalformedIdentityError) Error() string {
	return fmt.Sprintf("身份声明不合法: %s", e.Reason)
}

// NewMalformedIdentity 创建身份声明错误
func NewMalformedIdentity(reason string) *MalformedIdentityError {
	return &MalformedIdentityError{Reason: reason}
}

// AccessDeniedError 访问策略拒绝了本次操作
type AccessDeniedError struct {
	Resource  string // 资源类型，如 "shipment"
	Operation string // 操作，如 "modify"
	Reason    string
}

func (e *AccessDeniedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("无权对%s执行%s操作: %s", e.Resource, e.Operation, e.Reason)
	}
	return fmt.Sprintf("无权对%s执行%s操作", e.Resource, e.Operation)
}

// NewAccessDenied 创建访问拒绝错误
func NewAccessDenied(resource, operation, reason string) *AccessDeniedError {
	return &AccessDeniedError{Resource: resource, Operation: operation, Reason: reason}
}

// InvalidStateTransitionError 聚合当前状态不允许请求的状态转换
// 携带当前状态与目标状态用于诊断
type InvalidStateTransitionError struct {
	Aggregate string // 聚合类型，如 "shipment"
	Current   string
	Attempted string
	Reason    string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s状态不允许转换: %s -> %s (%s)", e.Aggregate, e.Current, e.Attempted, e.Reason)
	}
	return fmt.Sprintf("%s状态不允许转换: %s -> %s", e.Aggregate, e.Current, e.Attempted)
}

// NewInvalidStateTransition 创建状态转换错误
func NewInvalidStateTransition(aggregate, current, attempted string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Aggregate: aggregate, Current: current, Attempted: attempted}
}

// NewInvalidStateTransitionWithReason 创建带原因的状态转换错误
func NewInvalidStateTransitionWithReason(aggregate, current, attempted, reason string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Aggregate: aggregate, Current: current, Attempted: attempted, Reason: reason}
}

// UniquenessExhaustedError 标识符生成器连回退路径都发生了冲突
// 实际上几乎不可达，保留用于诊断
type UniquenessExhaustedError struct {
	Kind     string // 标识符类型，如 "tracking_number"
	Attempts int
}

func (e *UniquenessExhaustedError) Error() string {
	return fmt.Sprintf("%s生成失败: 重试%d次后回退值仍然冲突", e.Kind, e.Attempts)
}

// TenantMismatchError 检测到跨租户引用（例如发货单引用了其他租户的网点）
// 该错误总是致命的，不在本地恢复
type TenantMismatchError struct {
	Resource         string
	ExpectedTenantID uint
	ActualTenantID   uint
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("%s的租户不匹配: 期望租户%d, 实际租户%d", e.Resource, e.ExpectedTenantID, e.ActualTenantID)
}

// NewTenantMismatch 创建跨租户引用错误
func NewTenantMismatch(resource string, expected, actual uint) *TenantMismatchError {
	return &TenantMismatchError{Resource: resource, ExpectedTenantID: expected, ActualTenantID: actual}
}
