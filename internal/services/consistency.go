package services

import (
	"bezs/internal/models"
	"bezs/pkg/logger"
	"bezs/pkg/metrics"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// orphanCheck 一张关联表的孤立行判定条件
type orphanCheck struct {
	table string
	model interface{}
	cond  string
}

// 父记录被绕过服务层直接删除时会留下孤立关联
var orphanChecks = []orphanCheck{
	{
		table: "rbac",
		model: &models.RBAC{},
		cond: "NOT EXISTS (SELECT 1 FROM organizations WHERE organizations.id = rbac.organization_id)" +
			" OR NOT EXISTS (SELECT 1 FROM users WHERE users.id = rbac.user_id)" +
			" OR NOT EXISTS (SELECT 1 FROM roles WHERE roles.id = rbac.role_id)",
	},
	{
		table: "menu_permissions",
		model: &models.MenuPermission{},
		cond: "NOT EXISTS (SELECT 1 FROM roles WHERE roles.id = menu_permissions.role_id)" +
			" OR NOT EXISTS (SELECT 1 FROM apps WHERE apps.id = menu_permissions.app_id)" +
			" OR NOT EXISTS (SELECT 1 FROM app_menu_items WHERE app_menu_items.id = menu_permissions.app_menu_item_id)",
	},
	{
		table: "action_permissions",
		model: &models.ActionPermission{},
		cond: "NOT EXISTS (SELECT 1 FROM roles WHERE roles.id = action_permissions.role_id)" +
			" OR NOT EXISTS (SELECT 1 FROM apps WHERE apps.id = action_permissions.app_id)" +
			" OR NOT EXISTS (SELECT 1 FROM app_actions WHERE app_actions.id = action_permissions.app_action_id)",
	},
	{
		table: "app_organizations",
		model: &models.AppOrganization{},
		cond: "NOT EXISTS (SELECT 1 FROM apps WHERE apps.id = app_organizations.app_id)" +
			" OR NOT EXISTS (SELECT 1 FROM organizations WHERE organizations.id = app_organizations.organization_id)",
	},
}

// SweepReport 一次巡检结果
type SweepReport struct {
	Orphans   map[string]int64 `json:"orphans"`
	Deleted   map[string]int64 `json:"deleted"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}

// Total 孤立行总数
func (r *SweepReport) Total() int64 {
	var total int64
	for _, n := range r.Orphans {
		total += n
	}
	return total
}

// ConsistencyService 孤立关联巡检
type ConsistencyService struct {
	db            *gorm.DB
	deleteOrphans bool
	cron          *cron.Cron
	mu            sync.Mutex
	running       bool
	lastReport    *SweepReport
}

func NewConsistencyService(db *gorm.DB, deleteOrphans bool) *ConsistencyService {
	return &ConsistencyService{
		db:            db,
		deleteOrphans: deleteOrphans,
		cron:          cron.New(cron.WithSeconds()),
	}
}

// Sweep 统计各关联表的孤立行，开启删除时在同一事务内清理
func (s *ConsistencyService) Sweep(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{
		Orphans:   make(map[string]int64, len(orphanChecks)),
		Deleted:   make(map[string]int64, len(orphanChecks)),
		StartedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, check := range orphanChecks {
			var count int64
			if err := tx.Model(check.model).Where(check.cond).Count(&count).Error; err != nil {
				return fmt.Errorf("统计 %s 孤立行失败: %v", check.table, err)
			}
			report.Orphans[check.table] = count

			if s.deleteOrphans && count > 0 {
				res := tx.Where(check.cond).Delete(check.model)
				if res.Error != nil {
					return fmt.Errorf("清理 %s 孤立行失败: %v", check.table, res.Error)
				}
				report.Deleted[check.table] = res.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "巡检失败")
	}

	report.Duration = time.Since(report.StartedAt)
	for table, n := range report.Orphans {
		metrics.OrphanedRows.WithLabelValues(table).Set(float64(n))
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	return report, nil
}

// LastReport 最近一次巡检结果
func (s *ConsistencyService) LastReport() *SweepReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Start 按 cron 表达式启动定时巡检
func (s *ConsistencyService) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("巡检调度器已经在运行")
	}

	_, err := s.cron.AddFunc(spec, func() {
		report, err := s.Sweep(context.Background())
		if err != nil {
			logger.WithModule("consistency").Errorf("consistency sweep failed: %v", err)
			return
		}
		if report.Total() > 0 {
			logger.WithModule("consistency").WithField("orphans", report.Orphans).
				Warnf("found %d orphaned join rows (delete=%v)", report.Total(), s.deleteOrphans)
		}
	})
	if err != nil {
		return fmt.Errorf("巡检cron表达式无效: %v", err)
	}

	s.cron.Start()
	s.running = true
	logger.WithModule("consistency").Infof("consistency sweep scheduled: %s", spec)
	return nil
}

// Stop 停止定时巡检
func (s *ConsistencyService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	// 等待正在执行的巡检结束，巡检本身也会加锁
	<-s.cron.Stop().Done()
}
