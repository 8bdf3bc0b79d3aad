package server

// SampleItem is one ingredient card on the sample page
type SampleItem struct {
	Icon string `json:"icon"`
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Desc string `json:"desc"`
}

// SampleRecipe is the static showcase recipe
type SampleRecipe struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Main        []SampleItem `json:"ingredients_main"`
	Seasoning   []SampleItem `json:"seasoning"`
	Steps       []string     `json:"steps"`
}

var tomYumGoong = SampleRecipe{
	Title:       "ต้มยำกุ้งน้ำใส",
	Description: "วัตถุดิบและส่วนผสมสำหรับสูตรอาหารไทยยอดนิยม",
	Main: []SampleItem{
		{Icon: "🦐", Name: "กุ้ง", Qty: "250 กรัม", Desc: "กุ้งสดตัวใหญ่"},
		{Icon: "💧", Name: "น้ำสต็อก/น้ำซุป", Qty: "1 ลิตร", Desc: "น้ำสต็อกไก่หรือน้ำซุปปลา"},
		{Icon: "🌾", Name: "ตะไคร้", Qty: "3-4 ต้น", Desc: "คั่นให้ออกน้ำหอม"},
		{Icon: "🥒", Name: "ข่า", Qty: "3-4 ชิ้น", Desc: "หั่นบาง"},
	},
	Seasoning: []SampleItem{
		{Icon: "🍋", Name: "น้ำมะนาว", Qty: "3 ช้อนโต๊ะ", Desc: "มะนาวสด"},
		{Icon: "🐟", Name: "น้ำปลา", Qty: "3 ช้อนโต๊ะ", Desc: "น้ำปลาคุณภาพดี"},
	},
	Steps: []string{
		"เตรียมวัตถุดิบทั้งหมดให้พร้อม",
		"ต้มน้ำซุป ใส่ตะไคร้ ข่า และเครื่องสมุนไพร",
		"ใส่กุ้งและเห็ด ต้มจนกุ้งสุก",
		"ปรุงรสด้วยน้ำปลาและน้ำมะนาว",
	},
}
