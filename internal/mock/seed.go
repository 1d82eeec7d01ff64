package mock

import (
	"fmt"
	"time"

	"github.com/sadopc/bizdesk/internal/model"
)

// Seed fills the server with a small demo data set.
func (s *Server) Seed() {
	base := s.now().Add(-30 * 24 * time.Hour)
	names := []struct{ name, city, contact, phone string }{
		{"华东建设工程有限公司", "上海市浦东新区", "王磊", "13800138001"},
		{"北方机械制造集团", "北京市朝阳区", "李娜", "13900139002"},
		{"Acme Trading Ltd", "深圳市南山区", "Chen Wei", "13700137003"},
		{"青山设计院", "杭州市西湖区", "赵敏", "13600136004"},
	}
	for i, n := range names {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		c := s.AddCompany(model.Company{
			CompanyName: n.name,
			Address:     n.city,
			Contact1:    n.contact,
			Phone1:      n.phone,
			CreatedAt:   model.Timestamp{Time: at},
			UpdatedAt:   model.Timestamp{Time: at.Add(time.Duration(i) * time.Hour)},
		})
		for j := 0; j < 2; j++ {
			amount := float64(100000 * (i + 1) * (j + 1))
			f := s.AddFile(fmt.Sprintf("合同-%d-%d.pdf", i+1, j+1), model.FileTypeContract, c.ID, []byte("%PDF-1.4 demo"))
			s.AddContract(model.Contract{
				FileID:         string(f.ID),
				CompanyID:      model.FlexString(c.ID),
				ContractTitle:  fmt.Sprintf("%s 项目合同 %d", n.name, j+1),
				ContractAmount: amount,
				PaidAmount:     amount / 2,
				StartDate:      at.Format("2006-01-02"),
				EndDate:        at.AddDate(1, 0, 0).Format("2006-01-02"),
				FileName:       f.OriginalName,
				MainContent:    "设备采购与安装",
				UpdatedAt:      model.Timestamp{Time: at.Add(time.Duration(j) * time.Hour)},
			})
		}
		s.AddFile(fmt.Sprintf("图纸-%d.png", i+1), model.FileTypeDrawing, c.ID, []byte("\x89PNG demo"))
	}
}
