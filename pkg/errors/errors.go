package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrLockNotAcquired 在等待时间内未能获取分布式锁
	ErrLockNotAcquired = errors.New("资源正被占用，请稍后重试")
)
