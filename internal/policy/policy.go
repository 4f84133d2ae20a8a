// Package policy 访问策略集
//
// 每种受保护的资源对应一个策略对象，谓词在已加载的数据上纯求值，
// 不做任何I/O。资源由调用方先行加载，因此"不存在"与"拒绝访问"是
// 两个可区分的情况。三类actor的基线规则：
//
//   - PLATFORM_ADMIN：对所有资源的所有谓词放行（跨租户）
//   - TENANT_EMPLOYEE：仅当资源租户与actor租户一致时放行，
//     角色管理类操作额外要求租户管理员角色，且永远不能通过
//     自助路径停用或移除自己
//   - CUSTOMER：仅对自己创建/拥有的资源或本人档案放行
//
// 每个谓词都有一个companion的Validate形式，拒绝时返回AccessDeniedError。
package policy

import (
	"parcelhub/pkg/errors"
)

// deny 构造拒绝错误
func deny(resource, operation, reason string) error {
	return errors.NewAccessDenied(resource, operation, reason)
}
