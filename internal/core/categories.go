package core

var (
	expenseCategories = []string{"餐饮", "交通", "购物", "娱乐", "居住", "医疗", "其他"}
	incomeCategories  = []string{"工资", "奖金", "理财", "红包", "其他"}
)

// Categories returns the default category labels offered for t.
// The slice is a copy and may be modified by the caller.
func Categories(t RecordType) []string {
	var src []string
	switch t {
	case Expense:
		src = expenseCategories
	case Income:
		src = incomeCategories
	default:
		return nil
	}
	return append([]string(nil), src...)
}

// DefaultCategory is the first category offered for t.
func DefaultCategory(t RecordType) string {
	cats := Categories(t)
	if len(cats) == 0 {
		return ""
	}
	return cats[0]
}
